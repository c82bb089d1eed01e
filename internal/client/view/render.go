package view

import (
	"fmt"
	"strings"

	"github.com/dom/tickify/internal/client"
	"github.com/dom/tickify/internal/domain"
)

const (
	emptyChecklist = "No checklist items yet! Start creating one on Tickify ✅"
	shareHeading   = "Check out my checklist on Tickify! ✅"
	shortIDLength  = 8
)

type Renderer struct {
	styles Styles
}

func New(dark bool) *Renderer {
	return &Renderer{styles: NewStyles(ThemeFor(dark))}
}

// Checklist renders items as a numbered list under title. The numbers are
// the positions commands accept as item references.
func (r *Renderer) Checklist(title string, items []client.Item) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(title))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(r.styles.Muted.Render(emptyChecklist))
		b.WriteString("\n")
		return b.String()
	}

	for i, item := range items {
		b.WriteString(r.itemLine(i+1, item))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) itemLine(n int, item client.Item) string {
	check := "[ ]"
	text := r.styles.Text.Render(item.Text)
	if item.Completed {
		check = r.styles.Success.Render("[✓]")
		text = r.styles.Done.Render(item.Text)
	}

	star := r.styles.Muted.Render(priorityGlyph(item.Priority))
	if item.Priority == domain.PriorityHigh {
		star = r.styles.High.Render(priorityGlyph(item.Priority))
	}

	return fmt.Sprintf("%3d. %s %s %s %s", n, check, star, text,
		r.styles.Muted.Render(fmt.Sprintf("(%s, %s)", item.Priority, shortID(item.ID))))
}

// Search renders the items matching query with the query noted in the title.
func (r *Renderer) Search(items []client.Item, query string) string {
	matches := client.Search(items, query)
	title := fmt.Sprintf("Search: %q (%d of %d)", query, len(matches), len(items))
	return r.Checklist(title, matches)
}

// HighPriority renders only the high priority items.
func (r *Renderer) HighPriority(items []client.Item) string {
	return r.Checklist("High priority", client.HighPriority(items))
}

func (r *Renderer) Stats(stats domain.ChecklistStats) string {
	rows := []string{
		r.row("Total", fmt.Sprint(stats.Total)),
		r.row("Completed", fmt.Sprint(stats.Completed)),
		r.row("Active", fmt.Sprint(stats.Active)),
		r.row("Completion", fmt.Sprintf("%d%%", stats.CompletionRate)),
	}
	return r.styles.Box.Render(strings.Join(rows, "\n")) + "\n"
}

// Profile renders the signed-in account with its checklist stats.
func (r *Renderer) Profile(account *domain.Account, stats domain.ChecklistStats) string {
	name := "primary"
	if account.AccountName != nil {
		name = *account.AccountName
	}

	rows := []string{
		r.row("Email", account.Email),
		r.row("Account", name),
		r.row("Account ID", account.ID.String()),
		r.row("Member since", account.CreatedAt.Format("2006-01-02")),
	}

	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Profile"))
	b.WriteString("\n")
	b.WriteString(r.styles.Box.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")
	b.WriteString(r.Stats(stats))
	return b.String()
}

// Guest renders the profile of an anonymous session.
func (r *Renderer) Guest(stats domain.ChecklistStats) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Guest"))
	b.WriteString("\n")
	b.WriteString(r.styles.Muted.Render("Not signed in. Items are kept on this machine only."))
	b.WriteString("\n")
	b.WriteString(r.Stats(stats))
	return b.String()
}

// Accounts renders the accounts of an email, marking currentID.
func (r *Renderer) Accounts(accounts []*domain.Account, currentID string) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Accounts"))
	b.WriteString("\n")

	for _, account := range accounts {
		marker := "  "
		name := "(primary)"
		if account.AccountName != nil {
			name = *account.AccountName
		}
		line := r.styles.Text.Render(name)
		if account.ID.String() == currentID {
			marker = "* "
			line = r.styles.Highlight.Render(name)
		}
		b.WriteString(marker + line + " " + r.styles.Muted.Render(account.ID.String()) + "\n")
	}
	return b.String()
}

func (r *Renderer) Success(message string) string {
	return r.styles.Success.Render("✓ "+message) + "\n"
}

func (r *Renderer) Error(message string) string {
	return r.styles.Error.Render("✗ "+message) + "\n"
}

func (r *Renderer) row(label, value string) string {
	return r.styles.Label.Render(label) + r.styles.Text.Render(value)
}

// Share formats items as plain text for pasting into a message.
func Share(items []client.Item) string {
	if len(items) == 0 {
		return shareHeading + "\n\n" + emptyChecklist + "\n"
	}

	lines := make([]string, len(items))
	for i, item := range items {
		status := "❌"
		if item.Completed {
			status = "✅"
		}
		lines[i] = fmt.Sprintf("%s %s %s", status, priorityGlyph(item.Priority), item.Text)
	}
	return shareHeading + "\n\n" + strings.Join(lines, "\n") + "\n"
}

func priorityGlyph(p domain.Priority) string {
	if p == domain.PriorityHigh {
		return "⭐"
	}
	return "☆"
}

// shortID abbreviates server ids. Guest ids share long timestamp prefixes
// and are shown whole.
func shortID(id string) string {
	if strings.Contains(id, "-") && len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
