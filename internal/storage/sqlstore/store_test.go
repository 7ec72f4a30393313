package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"planner/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "planner.db")}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestUser(t *testing.T, store *Store, email string) models.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), "tester", email, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustListID(t *testing.T, store *Store, userID int64, listType string) int64 {
	t.Helper()
	id, err := store.ListIDByType(context.Background(), userID, listType)
	if err != nil {
		t.Fatalf("list %s: %v", listType, err)
	}
	return id
}

func mustAddTasks(t *testing.T, store *Store, userID, listID int64, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if _, err := store.CreateTask(context.Background(), userID, listID, text); err != nil {
			t.Fatalf("create task %q: %v", text, err)
		}
	}
}

func taskTexts(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"}, nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(context.Background(), Options{Driver: DriverSQLite}, nil); err == nil {
		t.Fatal("expected error for empty data source")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	got := pg.rebind(`SELECT id FROM tasks WHERE list_id = ? AND user_id = ? LIMIT 1 OFFSET ?`)
	want := `SELECT id FROM tasks WHERE list_id = $1 AND user_id = $2 LIMIT 1 OFFSET $3`
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
	if pg.forUpdate() != " FOR UPDATE" {
		t.Errorf("expected row locking on postgres")
	}

	lite := &Store{driver: DriverSQLite}
	if q := `SELECT ? , ?`; lite.rebind(q) != q {
		t.Errorf("sqlite query should be unchanged")
	}
}

func TestCreateUserSeedsReservedLists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "A@Example.com ")

	if u.Email != "a@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}

	lists, err := store.ListsForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListsForUser: %v", err)
	}
	var types []string
	for _, l := range lists {
		types = append(types, l.Type)
	}
	if !equalStrings(types, models.ReservedListTypes) {
		t.Errorf("seeded lists = %v", types)
	}

	if _, err := store.CreateUser(ctx, "other", "a@example.com", "hash"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}

	got, err := store.UserByEmail(ctx, "a@EXAMPLE.com")
	if err != nil || got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("UserByEmail = %+v, %v", got, err)
	}
	if _, err := store.UserByID(ctx, u.ID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")

	if _, err := store.ListIDByType(ctx, u.ID, "groceries"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	l, err := store.CreateList(ctx, u.ID, "  groceries ")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if l.Type != "groceries" || l.ID == 0 {
		t.Errorf("unexpected list %+v", l)
	}
	if id := mustListID(t, store, u.ID, "groceries"); id != l.ID {
		t.Errorf("ListIDByType = %d, want %d", id, l.ID)
	}

	if _, err := store.CreateList(ctx, u.ID, "groceries"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate list, got %v", err)
	}
	if _, err := store.CreateList(ctx, u.ID, "   "); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty name, got %v", err)
	}
	for _, name := range []string{"a/b", "dashboard", "logout", "login-signup", "api"} {
		if _, err := store.CreateList(ctx, u.ID, name); !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid for unroutable name %q, got %v", name, err)
		}
	}

	mustAddTasks(t, store, u.ID, l.ID, "milk", "eggs")
	if err := store.DeleteList(ctx, u.ID, l.ID); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if _, err := store.ListIDByType(ctx, u.ID, "groceries"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected list to be gone, got %v", err)
	}
	tasks, err := store.TasksForList(ctx, u.ID, l.ID)
	if err != nil || len(tasks) != 0 {
		t.Errorf("expected tasks to cascade, got %v, %v", tasks, err)
	}
}

func TestDeleteListGuards(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := newTestUser(t, store, "a@example.com")
	b := newTestUser(t, store, "b@example.com")

	personal := mustListID(t, store, a.ID, models.ListPersonal)
	if err := store.DeleteList(ctx, a.ID, personal); !errors.Is(err, ErrReservedList) {
		t.Errorf("expected ErrReservedList, got %v", err)
	}

	l, err := store.CreateList(ctx, a.ID, "side")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if err := store.DeleteList(ctx, b.ID, l.ID); err != nil {
		t.Errorf("foreign delete should be a no-op, got %v", err)
	}
	if id := mustListID(t, store, a.ID, "side"); id != l.ID {
		t.Errorf("list should survive a foreign delete")
	}
}

func TestTasksOrderedAndIndexed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")
	work := mustListID(t, store, u.ID, models.ListWork)

	mustAddTasks(t, store, u.ID, work, "one", "two", "three")

	tasks, err := store.TasksForList(ctx, u.ID, work)
	if err != nil {
		t.Fatalf("TasksForList: %v", err)
	}
	if !equalStrings(taskTexts(tasks), []string{"one", "two", "three"}) {
		t.Errorf("unexpected order %v", taskTexts(tasks))
	}

	task, err := store.TaskAtIndex(ctx, u.ID, work, 1)
	if err != nil || task.Text != "two" {
		t.Errorf("TaskAtIndex(1) = %+v, %v", task, err)
	}
	for _, idx := range []int{-1, 3} {
		if _, err := store.TaskAtIndex(ctx, u.ID, work, idx); !errors.Is(err, ErrNotFound) {
			t.Errorf("TaskAtIndex(%d): expected ErrNotFound, got %v", idx, err)
		}
	}

	if _, err := store.CreateTask(ctx, u.ID, work, "  "); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestDeleteTaskAtIndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")
	personal := mustListID(t, store, u.ID, models.ListPersonal)
	mustAddTasks(t, store, u.ID, personal, "a", "b")

	if err := store.DeleteTaskAtIndex(ctx, u.ID, personal, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	tasks, _ := store.TasksForList(ctx, u.ID, personal)
	if !equalStrings(taskTexts(tasks), []string{"a", "b"}) {
		t.Fatalf("tasks changed: %v", taskTexts(tasks))
	}

	if err := store.DeleteTaskAtIndex(ctx, u.ID, personal, 0); err != nil {
		t.Fatalf("DeleteTaskAtIndex: %v", err)
	}
	tasks, _ = store.TasksForList(ctx, u.ID, personal)
	if !equalStrings(taskTexts(tasks), []string{"b"}) {
		t.Errorf("unexpected tasks after delete: %v", taskTexts(tasks))
	}

	if err := store.DeleteTask(ctx, u.ID, personal, tasks[0].ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := store.DeleteTask(ctx, u.ID, personal, tasks[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCompleteTaskAtIndexMovesOneTask(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")
	work := mustListID(t, store, u.ID, models.ListWork)
	completed := mustListID(t, store, u.ID, models.ListCompleted)
	mustAddTasks(t, store, u.ID, work, "report", "review")

	if err := store.CompleteTaskAtIndex(ctx, u.ID, models.ListWork, 0); err != nil {
		t.Fatalf("CompleteTaskAtIndex: %v", err)
	}

	workTasks, _ := store.TasksForList(ctx, u.ID, work)
	doneTasks, _ := store.TasksForList(ctx, u.ID, completed)
	if !equalStrings(taskTexts(workTasks), []string{"review"}) {
		t.Errorf("work tasks = %v", taskTexts(workTasks))
	}
	if !equalStrings(taskTexts(doneTasks), []string{"report"}) {
		t.Errorf("completed tasks = %v", taskTexts(doneTasks))
	}

	if err := store.CompleteTaskAtIndex(ctx, u.ID, models.ListWork, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing index, got %v", err)
	}
	if err := store.CompleteTaskAtIndex(ctx, u.ID, "nope", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing list, got %v", err)
	}

	if err := store.CompleteTask(ctx, u.ID, models.ListWork, workTasks[0].ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	doneTasks, _ = store.TasksForList(ctx, u.ID, completed)
	if len(doneTasks) != 2 {
		t.Errorf("expected 2 completed tasks, got %d", len(doneTasks))
	}
	if err := store.CompleteTask(ctx, u.ID, models.ListWork, workTasks[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for task no longer in work, got %v", err)
	}
}

func TestCompleteWithoutCompletedList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")
	work := mustListID(t, store, u.ID, models.ListWork)
	mustAddTasks(t, store, u.ID, work, "report")

	if _, err := store.db.ExecContext(ctx, `DELETE FROM lists WHERE user_id = ? AND type = ?`, u.ID, models.ListCompleted); err != nil {
		t.Fatalf("drop completed list: %v", err)
	}

	if err := store.CompleteTaskAtIndex(ctx, u.ID, models.ListWork, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a completed list, got %v", err)
	}
	tasks, err := store.TasksForList(ctx, u.ID, work)
	if err != nil {
		t.Fatalf("TasksForList: %v", err)
	}
	if !equalStrings(taskTexts(tasks), []string{"report"}) {
		t.Errorf("work tasks = %v, want the task left in place", taskTexts(tasks))
	}
}

func TestExpiredContextAbortsQuery(t *testing.T) {
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")
	work := mustListID(t, store, u.ID, models.ListWork)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	if _, err := store.TasksForList(ctx, u.ID, work); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestCalendarTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	u := newTestUser(t, store, "a@example.com")
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	added, err := store.AddCalendarTask(ctx, u.ID, day, "dentist")
	if err != nil {
		t.Fatalf("AddCalendarTask: %v", err)
	}
	if added.ID == 0 || added.Date != "2024-03-05" || added.DisplayDate != "05-03-2024" {
		t.Errorf("unexpected echo %+v", added)
	}
	if _, err := store.AddCalendarTask(ctx, u.ID, day.AddDate(0, 0, 1), "gym"); err != nil {
		t.Fatalf("AddCalendarTask: %v", err)
	}

	got, err := store.CalendarTasksByDate(ctx, u.ID, day)
	if err != nil {
		t.Fatalf("CalendarTasksByDate: %v", err)
	}
	if len(got) != 1 || got[0].ID != added.ID || got[0].Text != "dentist" {
		t.Fatalf("unexpected tasks %+v", got)
	}

	all, err := store.CalendarTasksForUser(ctx, u.ID)
	if err != nil || len(all) != 2 || all[1].DisplayDate != "06-03-2024" {
		t.Fatalf("CalendarTasksForUser = %+v, %v", all, err)
	}

	if err := store.DeleteCalendarTask(ctx, u.ID, added.ID); err != nil {
		t.Fatalf("DeleteCalendarTask: %v", err)
	}
	if err := store.DeleteCalendarTask(ctx, u.ID, added.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	got, _ = store.CalendarTasksByDate(ctx, u.ID, day)
	if len(got) != 0 {
		t.Errorf("expected no tasks after delete, got %+v", got)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := newTestUser(t, store, "a@example.com")
	b := newTestUser(t, store, "b@example.com")

	aPersonal := mustListID(t, store, a.ID, models.ListPersonal)
	bPersonal := mustListID(t, store, b.ID, models.ListPersonal)
	if aPersonal == bPersonal {
		t.Fatal("users share a list row")
	}

	mustAddTasks(t, store, a.ID, aPersonal, "a1", "a2")
	mustAddTasks(t, store, b.ID, bPersonal, "b1")

	if _, err := store.CreateTask(ctx, b.ID, aPersonal, "intruder"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound writing into another user's list, got %v", err)
	}
	if tasks, _ := store.TasksForList(ctx, b.ID, aPersonal); len(tasks) != 0 {
		t.Errorf("user b can read user a's tasks: %v", taskTexts(tasks))
	}

	if err := store.DeleteTaskAtIndex(ctx, b.ID, bPersonal, 0); err != nil {
		t.Fatalf("DeleteTaskAtIndex: %v", err)
	}
	if err := store.CompleteTaskAtIndex(ctx, b.ID, models.ListPersonal, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for b's empty list, got %v", err)
	}

	aTasks, _ := store.TasksForList(ctx, a.ID, aPersonal)
	if !equalStrings(taskTexts(aTasks), []string{"a1", "a2"}) {
		t.Errorf("user a's tasks changed: %v", taskTexts(aTasks))
	}

	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	ct, err := store.AddCalendarTask(ctx, a.ID, day, "a's day")
	if err != nil {
		t.Fatalf("AddCalendarTask: %v", err)
	}
	if got, _ := store.CalendarTasksByDate(ctx, b.ID, day); len(got) != 0 {
		t.Errorf("user b sees user a's calendar tasks")
	}
	if err := store.DeleteCalendarTask(ctx, b.ID, ct.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting another user's calendar task, got %v", err)
	}
}
