package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lushlawncarepros/petersen-budget/internal/core"
	"github.com/lushlawncarepros/petersen-budget/internal/ledger"
)

// entryView is one history row ready for display.
type entryView struct {
	Row      int
	Date     string
	Kind     string
	Category string
	Amount   string
	Owner    string
	Memo     string
	IsIncome bool
}

type categoryView struct {
	Row      int
	Kind     string
	Name     string
	Order    int
	Color    string
	IsHeader bool
}

type barView struct {
	Name   string
	Amount string
	Width  int
}

type indexView struct {
	User    string
	Tab     string
	Msg     string
	Err     string
	Today   string
	Dropped int

	LoadFailed bool

	TotalIncome  string
	TotalExpense string
	NetBalance   string
	NetNegative  bool

	ExpenseCategories []string
	IncomeCategories  []string
	Categories        []categoryView

	Bars    []barView
	Entries []entryView
}

func (s *Server) currentUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	return s.sessions.UserFor(c.Value)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderLogin(w, r, "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.renderLogin(w, r, "Invalid request")
			return
		}
		token, err := s.sessions.Login(r.Form.Get("username"), r.Form.Get("password"))
		if err != nil {
			slog.WarnContext(r.Context(), "Login failed", "username", r.Form.Get("username"))
			w.WriteHeader(http.StatusUnauthorized)
			s.renderLogin(w, r, "Invalid username or password")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	data := struct{ Error string }{Error: errMsg}
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	user, ok := s.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	view := indexView{
		User:  user,
		Tab:   tabParam(r),
		Msg:   r.URL.Query().Get("msg"),
		Err:   r.URL.Query().Get("err"),
		Today: time.Now().Format("2006-01-02"),
	}

	// The ledger is re-fetched on every render: the store is the sole
	// source of truth and the other household member may have written
	// since the last cycle.
	l, idx, err := s.svc.Load(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger load failed", "error", err)
		view.LoadFailed = true
	}

	view.Dropped = l.Dropped
	view.TotalIncome = l.TotalIncome.USD()
	view.TotalExpense = l.TotalExpense.USD()
	view.NetBalance = l.NetBalance.USD()
	view.NetNegative = l.NetBalance.Cents < 0
	view.ExpenseCategories = idx.Names(core.Expense)
	view.IncomeCategories = idx.Names(core.Income)

	for _, kind := range []core.Kind{core.ExpenseHeader, core.Expense, core.IncomeHeader, core.Income} {
		for _, c := range idx.ForKind(kind) {
			view.Categories = append(view.Categories, categoryView{
				Row:      c.Row,
				Kind:     string(c.Kind),
				Name:     c.Name,
				Order:    c.Order,
				Color:    c.Color,
				IsHeader: c.Kind.IsHeader(),
			})
		}
	}

	view.Bars = expenseBars(l)

	entries := append([]core.Transaction(nil), l.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date.Time)
	})
	for _, e := range entries {
		view.Entries = append(view.Entries, entryView{
			Row:      e.Row,
			Date:     e.Date.ISO(),
			Kind:     string(e.Kind),
			Category: e.Category,
			Amount:   e.Amount.USD(),
			Owner:    e.Owner,
			Memo:     e.Memo,
			IsIncome: e.Kind == core.Income,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
	}
}

// expenseBars scales per-category expense subtotals against the largest one
// for the breakdown chart.
func expenseBars(l core.Ledger) []barView {
	var maxCents int64
	for _, sub := range l.ByCategory {
		if sub.Kind == core.Expense && sub.Total.Cents > maxCents {
			maxCents = sub.Total.Cents
		}
	}
	var bars []barView
	for _, sub := range l.ByCategory {
		if sub.Kind != core.Expense {
			continue
		}
		width := 0
		if maxCents > 0 && sub.Total.Cents > 0 {
			width = int((sub.Total.Cents*100 + maxCents/2) / maxCents) // rounded percent
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		name := sub.Category
		if name == "" {
			name = "(uncategorized)"
		}
		bars = append(bars, barView{Name: name, Amount: sub.Total.USD(), Width: width})
	}
	return bars
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requirePost(w, r)
	if !ok {
		return
	}

	tx, errMsg := transactionFromForm(r, user)
	if errMsg != "" {
		s.redirect(w, r, "add", "", errMsg)
		return
	}
	if err := s.svc.AddTransaction(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Add transaction failed", "error", err)
		s.redirect(w, r, "add", "", "Could not save the entry")
		return
	}
	s.redirect(w, r, "add", "Saved "+tx.Amount.USD()+" to "+tx.Category, "")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requirePost(w, r)
	if !ok {
		return
	}

	row, err := strconv.Atoi(r.Form.Get("row"))
	if err != nil {
		s.redirect(w, r, "history", "", "Invalid row")
		return
	}
	tx, errMsg := transactionFromForm(r, user)
	if errMsg != "" {
		s.redirect(w, r, "history", "", errMsg)
		return
	}
	// Editing keeps the original owner; the editor is not the logger.
	if owner := sanitizeInput(r.Form.Get("owner")); owner != "" {
		tx.Owner = owner
	}
	if err := s.svc.UpdateTransaction(r.Context(), row, tx); err != nil {
		slog.ErrorContext(r.Context(), "Update transaction failed", "error", err, "row", row)
		s.redirect(w, r, "history", "", "Could not update the entry")
		return
	}
	s.redirect(w, r, "history", "Entry updated", "")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requirePost(w, r)
	if !ok {
		return
	}

	row, err := strconv.Atoi(r.Form.Get("row"))
	if err != nil {
		s.redirect(w, r, "history", "", "Invalid row")
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), row, user); err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "row", row)
		s.redirect(w, r, "history", "", "Could not delete the entry")
		return
	}
	s.redirect(w, r, "history", "Entry deleted", "")
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requirePost(w, r)
	if !ok {
		return
	}

	kind, kindOK := core.ParseKind(r.Form.Get("type"))
	if !kindOK {
		s.redirect(w, r, "add", "", "Invalid category type")
		return
	}
	name := sanitizeInput(r.Form.Get("name"))
	order := core.DefaultCategoryOrder
	if v := strings.TrimSpace(r.Form.Get("order")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			order = n
		}
	}
	cat := core.Category{
		Kind:  kind,
		Name:  name,
		Order: order,
		Color: sanitizeInput(r.Form.Get("color")),
	}
	if err := s.svc.AddCategory(r.Context(), cat, user); err != nil {
		if errors.Is(err, ledger.ErrDuplicateCategory) {
			s.redirect(w, r, "add", "", "A "+string(kind)+" category named "+name+" already exists")
			return
		}
		slog.ErrorContext(r.Context(), "Add category failed", "error", err)
		s.redirect(w, r, "add", "", "Could not add the category")
		return
	}
	s.redirect(w, r, "add", "Added category "+name, "")
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requirePost(w, r)
	if !ok {
		return
	}

	row, err := strconv.Atoi(r.Form.Get("row"))
	if err != nil {
		s.redirect(w, r, "add", "", "Invalid row")
		return
	}
	if err := s.svc.DeleteCategory(r.Context(), row, user); err != nil {
		slog.ErrorContext(r.Context(), "Delete category failed", "error", err, "row", row)
		s.redirect(w, r, "add", "", "Could not delete the category")
		return
	}
	s.redirect(w, r, "add", "Category deleted", "")
}

// requirePost enforces method, session and form parsing for mutation
// handlers, returning the logged-in user's display name.
func (s *Server) requirePost(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return "", false
	}
	user, ok := s.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		return "", false
	}
	return user, true
}

// transactionFromForm builds a transaction from the add/edit form. Form
// input is strict, unlike ingestion: a bad amount or date is the user's
// typo and is reported, not coerced.
func transactionFromForm(r *http.Request, owner string) (core.Transaction, string) {
	date, ok := core.ParseDate(r.Form.Get("date"))
	if !ok {
		return core.Transaction{}, "Invalid date"
	}
	kind, ok := core.ParseKind(r.Form.Get("type"))
	if !ok || !kind.ValidForTransaction() {
		return core.Transaction{}, "Invalid type"
	}
	cents, err := core.ParseAmountToCents(r.Form.Get("amount"))
	if err != nil {
		return core.Transaction{}, "Invalid amount"
	}
	return core.Transaction{
		Date:     date,
		Kind:     kind,
		Category: sanitizeInput(r.Form.Get("category")),
		Amount:   core.Money{Cents: cents},
		Owner:    owner,
		Memo:     sanitizeInput(r.Form.Get("memo")),
	}, ""
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, tab, msg, errMsg string) {
	q := url.Values{}
	q.Set("tab", tab)
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func tabParam(r *http.Request) string {
	switch r.URL.Query().Get("tab") {
	case "visuals":
		return "visuals"
	case "history":
		return "history"
	default:
		return "add"
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
