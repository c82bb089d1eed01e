package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/events"
	"github.com/dom/tickify/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemJSON struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
	CreatedBy string `json:"created_by"`
}

func TestChecklistHandler_Add(t *testing.T) {
	ts := testutil.NewTestServer(t)
	accountID, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewAccountBuilder().Build(t, ts.Repos.Account)

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "defaults",
			request:        map[string]interface{}{"text": "  Buy milk  "},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var item itemJSON
				testutil.AssertJSONResponse(t, resp, &item)
				assert.Equal(t, "Buy milk", item.Text)
				assert.False(t, item.Completed)
				assert.Equal(t, "low", item.Priority)
				assert.Equal(t, accountID.String(), item.CreatedBy)
			},
		},
		{
			name: "explicit fields",
			request: map[string]interface{}{
				"text":       "Ship it",
				"completed":  true,
				"priority":   "high",
				"created_by": accountID.String(),
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var item itemJSON
				testutil.AssertJSONResponse(t, resp, &item)
				assert.True(t, item.Completed)
				assert.Equal(t, "high", item.Priority)
			},
		},
		{
			name:           "empty text",
			request:        map[string]interface{}{"text": "   "},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Text field is required!",
		},
		{
			name:           "unknown priority",
			request:        map[string]interface{}{"text": "x", "priority": "urgent"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Priority must be",
		},
		{
			name:           "malformed creator",
			request:        map[string]interface{}{"text": "x", "created_by": "42"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid id format",
		},
		{
			name:           "unknown creator",
			request:        map[string]interface{}{"text": "x", "created_by": uuid.New().String()},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "creator account does not exist",
		},
		{
			name:           "another account's creator",
			request:        map[string]interface{}{"text": "x", "created_by": other.ID.String()},
			expectedStatus: http.StatusForbidden,
			expectedError:  "your own account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/checklist-items"), tt.request, token)
			resp := testutil.Do(t, req)

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestChecklistHandler_RequiresToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/checklist-items"},
		{http.MethodPost, "/checklist-items"},
		{http.MethodPut, "/checklist-items/" + uuid.New().String()},
		{http.MethodDelete, "/checklist-items/" + uuid.New().String()},
		{http.MethodGet, "/checklist-items:stats"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, p.method, ts.APIURL(p.path), nil, "")
			testutil.AssertStatusCode(t, testutil.Do(t, req), http.StatusUnauthorized)
		})
	}
}

func TestChecklistHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)
	accountID, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewAccountBuilder().Build(t, ts.Repos.Account)

	testutil.NewItemBuilder(accountID).WithText("mine").Build(t, ts.Repos.Checklist)
	testutil.NewItemBuilder(other.ID).WithText("theirs").Build(t, ts.Repos.Checklist)

	t.Run("own items only", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/checklist-items"), nil, token)
		resp := testutil.Do(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var items []itemJSON
		testutil.AssertJSONResponse(t, resp, &items)
		require.Len(t, items, 1)
		assert.Equal(t, "mine", items[0].Text)
	})

	t.Run("explicit owner", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/checklist-items?owner="+accountID.String()), nil, token)
		resp := testutil.Do(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("malformed owner", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/checklist-items?owner=abc"), nil, token)
		testutil.AssertErrorResponse(t, testutil.Do(t, req), http.StatusBadRequest, "invalid id format")
	})

	t.Run("foreign owner", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/checklist-items?owner="+other.ID.String()), nil, token)
		testutil.AssertStatusCode(t, testutil.Do(t, req), http.StatusForbidden)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		_, fresh := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/checklist-items"), nil, fresh)
		resp := testutil.Do(t, req)

		var items []itemJSON
		testutil.AssertJSONResponse(t, resp, &items)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestChecklistHandler_UpdateAndDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	accountID, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewAccountBuilder().Build(t, ts.Repos.Account)

	item := testutil.NewItemBuilder(accountID).WithText("Write tests").WithPriority(domain.PriorityMedium).Build(t, ts.Repos.Checklist)
	foreign := testutil.NewItemBuilder(other.ID).Build(t, ts.Repos.Checklist)
	itemURL := ts.APIURL("/checklist-items/" + item.ID.String())

	tests := []struct {
		name           string
		url            string
		request        map[string]interface{}
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "toggle completed keeps other fields",
			url:            itemURL,
			request:        map[string]interface{}{"completed": true},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var got itemJSON
				testutil.AssertJSONResponse(t, resp, &got)
				assert.True(t, got.Completed)
				assert.Equal(t, "Write tests", got.Text)
				assert.Equal(t, "medium", got.Priority)
			},
		},
		{
			name:           "change priority",
			url:            itemURL,
			request:        map[string]interface{}{"priority": "high"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var got itemJSON
				testutil.AssertJSONResponse(t, resp, &got)
				assert.Equal(t, "high", got.Priority)
				assert.True(t, got.Completed)
			},
		},
		{
			name:           "priority is case-insensitive",
			url:            itemURL,
			request:        map[string]interface{}{"priority": "LOW"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var got itemJSON
				testutil.AssertJSONResponse(t, resp, &got)
				assert.Equal(t, "low", got.Priority)
			},
		},
		{
			name:           "empty priority",
			url:            itemURL,
			request:        map[string]interface{}{"priority": ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "blank text",
			url:            itemURL,
			request:        map[string]interface{}{"text": ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown item",
			url:            ts.APIURL("/checklist-items/" + uuid.New().String()),
			request:        map[string]interface{}{"completed": true},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed id",
			url:            ts.APIURL("/checklist-items/not-an-id"),
			request:        map[string]interface{}{"completed": true},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "another account's item",
			url:            ts.APIURL("/checklist-items/" + foreign.ID.String()),
			request:        map[string]interface{}{"completed": true},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodPut, tt.url, tt.request, token)
			resp := testutil.Do(t, req)
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}

	t.Run("delete foreign item", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/checklist-items/"+foreign.ID.String()), nil, token)
		testutil.AssertStatusCode(t, testutil.Do(t, req), http.StatusForbidden)
	})

	t.Run("delete", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodDelete, itemURL, nil, token)
		resp := testutil.Do(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body map[string]string
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "Deleted successfully", body["message"])

		req = testutil.CreateAuthenticatedRequest(t, http.MethodDelete, itemURL, nil, token)
		testutil.AssertStatusCode(t, testutil.Do(t, req), http.StatusNotFound)
	})
}

func TestChecklistHandler_Stats(t *testing.T) {
	ts := testutil.NewTestServer(t)
	accountID, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)

	testutil.NewItemBuilder(accountID).Completed().Build(t, ts.Repos.Checklist)
	testutil.NewItemBuilder(accountID).Completed().Build(t, ts.Repos.Checklist)
	testutil.NewItemBuilder(accountID).Build(t, ts.Repos.Checklist)
	testutil.NewItemBuilder(accountID).Build(t, ts.Repos.Checklist)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/checklist-items:stats"), nil, token)
	resp := testutil.Do(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var stats domain.ChecklistStats
	testutil.AssertJSONResponse(t, resp, &stats)
	assert.Equal(t, domain.ChecklistStats{Total: 4, Completed: 2, Active: 2, CompletionRate: 50}, stats)
}

func TestWebSocketHandler_Feed(t *testing.T) {
	ts := testutil.NewTestServer(t)
	accountID, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)

	t.Run("rejects missing token", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/ws"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	mine := testutil.NewWSClient(t, ts.WebSocketURL(token))
	theirs := testutil.NewWSClient(t, ts.WebSocketURL(otherToken))
	require.Eventually(t, func() bool {
		return ts.Hub.ConnectionCount(accountID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/checklist-items"),
		map[string]interface{}{"text": "live"}, token)
	testutil.AssertStatusCode(t, testutil.Do(t, req), http.StatusCreated)

	msg := mine.ExpectMessage(events.ItemCreated, 2*time.Second)
	require.NotNil(t, msg.Item)
	assert.Equal(t, "live", msg.Item.Text)
	assert.Equal(t, accountID, msg.Item.CreatedBy)

	theirs.ExpectNoMessage(200 * time.Millisecond)
}
