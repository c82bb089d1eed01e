package client

import (
	"context"

	"github.com/dom/tickify/internal/domain"
)

// RemoteStore keeps items on the server, scoped by the session token.
type RemoteStore struct {
	api   *APIClient
	token string
}

func NewRemoteStore(api *APIClient, token string) *RemoteStore {
	return &RemoteStore{api: api, token: token}
}

func (s *RemoteStore) List(ctx context.Context) ([]Item, error) {
	return s.api.ListItems(ctx, s.token)
}

func (s *RemoteStore) Add(ctx context.Context, item NewItem) (*Item, error) {
	return s.api.AddItem(ctx, s.token, item)
}

func (s *RemoteStore) Update(ctx context.Context, id string, patch domain.ItemPatch) (*Item, error) {
	return s.api.UpdateItem(ctx, s.token, id, patch)
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	return s.api.DeleteItem(ctx, s.token, id)
}

func (s *RemoteStore) Close() error { return nil }
