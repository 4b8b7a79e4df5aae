package agreements

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kuitang/agreements-e2e/internal/db"
	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/searchterm"
	"pgregory.net/rapid"
)

// testCounter provides unique names for in-memory databases to avoid conflicts
var testCounter atomic.Int64

// createInMemoryService creates a Service with a fresh in-memory database.
func createInMemoryService(t interface {
	Fatalf(format string, args ...interface{})
}) *Service {
	name := fmt.Sprintf("agreements-test%d", testCounter.Add(1))
	database, err := db.OpenInMemory(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to create in-memory database: %v", err)
	}
	return NewService(database)
}

// fakeClock advances one second per call so ordering by last-modified is deterministic.
func fakeClock(start time.Time) func() time.Time {
	var ticks atomic.Int64
	return func() time.Time {
		return start.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}

// =============================================================================
// Generators for property-based testing
// =============================================================================

func nameGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`Agreement Name [a-z0-9]{8}`)
}

func dateGenerator() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		month := rapid.IntRange(1, 12).Draw(t, "month")
		day := rapid.IntRange(1, 28).Draw(t, "day")
		year := rapid.IntRange(95, 124).Draw(t, "year") % 100
		return fmt.Sprintf("%02d/%02d/%02d", month, day, year)
	})
}

func createParamsGenerator() *rapid.Generator[CreateParams] {
	return rapid.Custom(func(t *rapid.T) CreateParams {
		return CreateParams{
			Name:                           nameGenerator().Draw(t, "name"),
			Date:                           dateGenerator().Draw(t, "date"),
			Notes:                          rapid.StringMatching(`(notes|memo|detail) [a-z0-9 ]{0,40}`).Draw(t, "notes"),
			ResponsibleParty:               rapid.StringMatching(`Responsible Party [a-z0-9]{6}`).Draw(t, "party"),
			MaintenanceOwnerResponsibility: rapid.StringMatching(`Maintenance owner responsibility [a-z0-9]{6}`).Draw(t, "owner"),
			MaintenanceReasoning:           rapid.StringMatching(`Maintenance reasoning [a-z0-9]{6}`).Draw(t, "reasoning"),
		}
	})
}

// =============================================================================
// Property: created agreements read back unchanged
// =============================================================================

func testService_CreateRead_Roundtrip(t *rapid.T) {
	svc := createInMemoryService(t)
	ctx := context.Background()
	params := createParamsGenerator().Draw(t, "params")

	created, err := svc.Create(ctx, params)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Read(ctx, created.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Name != params.Name || got.Date != params.Date || got.Notes != params.Notes ||
		got.ResponsibleParty != params.ResponsibleParty ||
		got.MaintenanceOwnerResponsibility != params.MaintenanceOwnerResponsibility ||
		got.MaintenanceReasoning != params.MaintenanceReasoning {
		t.Fatalf("read %+v, created from %+v", got, params)
	}
	if !got.UpdatedAt.Equal(created.UpdatedAt) || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("timestamps changed: created %v/%v, read %v/%v", created.CreatedAt, created.UpdatedAt, got.CreatedAt, got.UpdatedAt)
	}
}

func TestService_CreateRead_Roundtrip(t *testing.T) {
	rapid.Check(t, testService_CreateRead_Roundtrip)
}

var idPattern = regexp.MustCompile(`^AGR-[0-9A-F]{8}$`)

func TestNewID_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		if id := NewID(); !idPattern.MatchString(id) {
			t.Fatalf("NewID() = %q, want %s", id, idPattern)
		}
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := createInMemoryService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params CreateParams
	}{
		{"missing name", CreateParams{Name: "   "}},
		{"impossible date", CreateParams{Name: "A", Date: "13/45/99"}},
		{"four-digit year", CreateParams{Name: "A", Date: "01/02/2026"}},
		{"name too long", CreateParams{Name: strings.Repeat("n", MaxNameLength+1)}},
		{"notes too long", CreateParams{Name: "A", Notes: strings.Repeat("n", MaxNotesLength+1)}},
		{"party too long", CreateParams{Name: "A", ResponsibleParty: strings.Repeat("p", MaxFieldLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.params)
			if !errs.Is(err, errs.InvalidArgument) {
				t.Fatalf("expected invalid_argument, got %v", err)
			}
		})
	}

	a, err := svc.Create(ctx, CreateParams{Name: "  Trimmed  ", Date: " 02/29/24 "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Name != "Trimmed" || a.Date != "02/29/24" {
		t.Fatalf("expected trimmed fields, got %q %q", a.Name, a.Date)
	}
}

func TestService_Create_RetriesIDCollision(t *testing.T) {
	svc := createInMemoryService(t)
	ctx := context.Background()

	ids := []string{"AGR-00000001", "AGR-00000001", "AGR-00000002"}
	var calls int
	svc.id = func() string {
		id := ids[calls]
		calls++
		return id
	}

	first, err := svc.Create(ctx, CreateParams{Name: "first"})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(ctx, CreateParams{Name: "second"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if first.ID != "AGR-00000001" || second.ID != "AGR-00000002" || calls != 3 {
		t.Fatalf("unexpected ids %q %q after %d calls", first.ID, second.ID, calls)
	}
}

func TestService_Update_Partial(t *testing.T) {
	svc := createInMemoryService(t)
	svc.now = fakeClock(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateParams{Name: "Original", Date: "01/02/03", Notes: "keep me"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newName := "Renamed"
	updated, err := svc.Update(ctx, created.ID, UpdateParams{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" || updated.Notes != "keep me" || updated.Date != "01/02/03" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("update did not bump last-modified: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update changed created_at")
	}

	empty := ""
	if _, err := svc.Update(ctx, created.ID, UpdateParams{Name: &empty}); !errs.Is(err, errs.InvalidArgument) {
		t.Fatalf("expected invalid_argument for blank name, got %v", err)
	}
	if _, err := svc.Update(ctx, "AGR-FFFFFFFF", UpdateParams{Name: &newName}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc := createInMemoryService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateParams{Name: "Doomed"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Read(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	err = svc.Delete(ctx, a.ID)
	if !errs.Is(err, errs.NotFound) {
		t.Fatalf("expected not_found deleting twice, got %v", err)
	}
	if errs.MessageOf(err) != "agreement not found" {
		t.Fatalf("unexpected user-facing message %q", errs.MessageOf(err))
	}
}

// =============================================================================
// Listing: sort and search
// =============================================================================

func seedListing(t *testing.T, svc *Service, names ...string) []*Agreement {
	t.Helper()
	out := make([]*Agreement, 0, len(names))
	for _, n := range names {
		a, err := svc.Create(context.Background(), CreateParams{Name: n})
		if err != nil {
			t.Fatalf("Create %q: %v", n, err)
		}
		out = append(out, a)
	}
	return out
}

func names(list []Agreement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}

func TestService_List_Sort(t *testing.T) {
	svc := createInMemoryService(t)
	svc.now = fakeClock(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	seeded := seedListing(t, svc, "beta", "Alpha", "gamma")

	res, err := svc.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := strings.Join(names(res.Agreements), ","); got != "gamma,Alpha,beta" {
		t.Fatalf("default sort should be newest first, got %s", got)
	}
	if res.Sort != SortLastModified || res.TotalCount != 3 {
		t.Fatalf("unexpected result metadata: %+v", res)
	}

	res, err = svc.List(ctx, ListParams{Sort: SortName})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := strings.Join(names(res.Agreements), ","); got != "Alpha,beta,gamma" {
		t.Fatalf("name sort should be case-insensitive ascending, got %s", got)
	}

	res, err = svc.List(ctx, ListParams{Sort: SortID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(res.Agreements); i++ {
		if res.Agreements[i-1].ID > res.Agreements[i].ID {
			t.Fatalf("id sort out of order: %q before %q", res.Agreements[i-1].ID, res.Agreements[i].ID)
		}
	}

	// Editing the oldest moves it to the top.
	notes := "touched"
	if _, err := svc.Update(ctx, seeded[0].ID, UpdateParams{Notes: &notes}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	res, err = svc.List(ctx, ListParams{Sort: SortLastModified})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Agreements[0].ID != seeded[0].ID {
		t.Fatalf("edited agreement should sort first, got %s", res.Agreements[0].Name)
	}

	if _, err := svc.List(ctx, ListParams{Sort: "size"}); !errs.Is(err, errs.InvalidArgument) {
		t.Fatalf("expected invalid_argument for unknown sort, got %v", err)
	}
}

func TestService_List_Search(t *testing.T) {
	svc := createInMemoryService(t)
	svc.now = fakeClock(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	seeded := seedListing(t, svc, "Agreement Name abc12345", "Agreement Name xyz98765", "Lease renewal")

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"agreement name", 2},
		{"AGREEMENT NAME ABC", 1},
		{"  Agreement   Name  ", 2},
		{seeded[2].ID, 1},
		{"agr-", 3},
		{"10/18/2026", 3},
		{"10/19/2026", 0},
		{"no such agreement", 0},
		{"%", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := svc.List(ctx, ListParams{Query: tt.query})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(res.Agreements) != tt.want || res.TotalCount != tt.want {
				t.Fatalf("query %q matched %d (total %d), want %d", tt.query, len(res.Agreements), res.TotalCount, tt.want)
			}
		})
	}
}

func TestService_List_Pagination(t *testing.T) {
	svc := createInMemoryService(t)
	svc.now = fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seedListing(t, svc, "a", "b", "c", "d", "e")

	res, err := svc.List(context.Background(), ListParams{Sort: SortName, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := strings.Join(names(res.Agreements), ","); got != "c,d" || res.TotalCount != 5 {
		t.Fatalf("unexpected page %s (total %d)", got, res.TotalCount)
	}

	res, err = svc.List(context.Background(), ListParams{Limit: MaxLimit + 1, Offset: -3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Limit != MaxLimit || res.Offset != 0 {
		t.Fatalf("limit/offset not clamped: %d/%d", res.Limit, res.Offset)
	}
}

// =============================================================================
// Property: every listed row matches the search and derived terms find rows
// =============================================================================

func testService_List_DerivedTermFindsRows(t *rapid.T) {
	svc := createInMemoryService(t)
	ctx := context.Background()
	n := rapid.IntRange(1, 6).Draw(t, "n")
	for i := 0; i < n; i++ {
		if _, err := svc.Create(ctx, createParamsGenerator().Draw(t, fmt.Sprintf("params%d", i))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := svc.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	col := rapid.SampledFrom([]searchterm.Column{searchterm.ColumnName, searchterm.ColumnID, searchterm.ColumnDate}).Draw(t, "col")
	term, ok := searchterm.DeriveTerm(searchterm.Extract(all.Agreements, col), searchterm.StrategyFor(col))
	if !ok {
		t.Fatalf("no term derived from %d agreements", len(all.Agreements))
	}

	found, err := svc.List(ctx, ListParams{Query: term})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if found.TotalCount == 0 {
		t.Fatalf("derived %s term %q matched nothing", col, term)
	}
	folded := db.SearchFold(term)
	for _, a := range found.Agreements {
		hay := db.SearchFold(a.Name + "\n" + a.ID + "\n" + a.LastModified())
		if !strings.Contains(hay, folded) {
			t.Fatalf("row %+v does not contain term %q", a, term)
		}
	}
}

func TestService_List_DerivedTermFindsRows(t *testing.T) {
	rapid.Check(t, testService_List_DerivedTermFindsRows)
}
