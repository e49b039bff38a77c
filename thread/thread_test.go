package thread

import (
	"errors"
	"testing"

	"github.com/Desarso/companion/models"
)

func msg(id, parent string, role models.Role) models.Message {
	return models.Message{ID: id, ParentID: parent, Role: role, Text: id, Timestamp: 1}
}

// buildBranching returns:
//
//	u1 -> a1 -> u2 -> a2
//	   -> a1b
//	u1b
func buildBranching(t *testing.T) *Thread {
	t.Helper()
	th := New()
	for _, m := range []models.Message{
		msg("u1", "", models.RoleUser),
		msg("a1", "u1", models.RoleAgent),
		msg("u2", "a1", models.RoleUser),
		msg("a2", "u2", models.RoleAgent),
		msg("a1b", "u1", models.RoleAgent),
		msg("u1b", "", models.RoleUser),
	} {
		if err := th.Append(m); err != nil {
			t.Fatalf("Append(%s): %v", m.ID, err)
		}
	}
	return th
}

func TestAppendDoesNotMovePointer(t *testing.T) {
	th := New()
	if err := th.Append(msg("u1", "", models.RoleUser)); err != nil {
		t.Fatal(err)
	}
	if th.ActiveID() != "" {
		t.Errorf("expected no active message, got %q", th.ActiveID())
	}
	if len(th.ActivePath()) != 0 {
		t.Error("expected empty path without an active pointer")
	}
}

func TestAppendRejectsBadMessages(t *testing.T) {
	th := New()
	if err := th.Append(msg("", "", models.RoleUser)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
	if err := th.Append(msg("a1", "missing", models.RoleAgent)); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("expected ErrUnknownParent, got %v", err)
	}
	_ = th.Append(msg("u1", "", models.RoleUser))
	if err := th.Append(msg("u1", "", models.RoleUser)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestActivePathEndsAtActiveAndLinksParents(t *testing.T) {
	th := buildBranching(t)
	for _, id := range []string{"u1", "a1", "u2", "a2", "a1b", "u1b"} {
		if err := th.SetActive(id); err != nil {
			t.Fatal(err)
		}
		path := th.ActivePath()
		if len(path) == 0 || path[len(path)-1].ID != id {
			t.Fatalf("path for %s does not end with it: %v", id, path)
		}
		if !path[0].IsRoot() {
			t.Errorf("path for %s does not start at a root", id)
		}
		for i := 1; i < len(path); i++ {
			if path[i].ParentID != path[i-1].ID {
				t.Errorf("path for %s broken between %s and %s", id, path[i-1].ID, path[i].ID)
			}
		}
	}
}

func TestSetActiveUnknown(t *testing.T) {
	th := buildBranching(t)
	if err := th.SetActive("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := th.SetActive(""); err != nil {
		t.Errorf("clearing the pointer should succeed, got %v", err)
	}
}

func TestActivePathStopsAtDanglingParent(t *testing.T) {
	th := Load([]models.Message{
		msg("a1", "gone", models.RoleAgent),
		msg("u2", "a1", models.RoleUser),
	}, "u2")
	path := th.ActivePath()
	if len(path) != 2 || path[0].ID != "a1" || path[1].ID != "u2" {
		t.Errorf("expected [a1 u2], got %v", path)
	}
}

func TestActivePathStopsOnCycle(t *testing.T) {
	th := Load([]models.Message{
		msg("x", "y", models.RoleUser),
		msg("y", "x", models.RoleAgent),
	}, "x")
	if got := len(th.ActivePath()); got != 2 {
		t.Errorf("expected the walk to stop after 2 messages, got %d", got)
	}
}

func TestSiblingsOf(t *testing.T) {
	th := buildBranching(t)

	sibs, err := th.SiblingsOf("a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sibs) != 2 || sibs[0].ID != "a1" || sibs[1].ID != "a1b" {
		t.Errorf("expected [a1 a1b], got %v", sibs)
	}

	roots, _ := th.SiblingsOf("u1b")
	if len(roots) != 2 || roots[0].ID != "u1" {
		t.Errorf("expected root siblings [u1 u1b], got %v", roots)
	}

	single, _ := th.SiblingsOf("a2")
	if len(single) != 1 || single[0].ID != "a2" {
		t.Errorf("expected only the message itself, got %v", single)
	}
}

func TestSiblingsOfFiltersRole(t *testing.T) {
	th := New()
	_ = th.Append(msg("u1", "", models.RoleUser))
	_ = th.Append(msg("a1", "u1", models.RoleAgent))
	_ = th.Append(msg("u-odd", "u1", models.RoleUser))
	sibs, _ := th.SiblingsOf("a1")
	if len(sibs) != 1 {
		t.Errorf("expected user child to be excluded, got %v", sibs)
	}
}

func TestSiblingsOfUnknown(t *testing.T) {
	if _, err := New().SiblingsOf("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeepestDescendant(t *testing.T) {
	th := buildBranching(t)
	tests := map[string]string{
		"u1":  "a2",
		"a1":  "a2",
		"a1b": "a1b",
		"u1b": "u1b",
	}
	for start, want := range tests {
		got, err := th.DeepestDescendant(start)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("DeepestDescendant(%s): expected %s, got %s", start, want, got)
		}
	}
}

func TestForkAddsExactlyOneSibling(t *testing.T) {
	th := buildBranching(t)
	before := th.Messages()
	sibsBefore, _ := th.SiblingsOf("a1")

	forked, err := th.Fork("u1", models.Message{Role: models.RoleAgent, Text: "again"})
	if err != nil {
		t.Fatal(err)
	}
	if forked.ID == "" || forked.Timestamp == 0 {
		t.Error("expected fork to fill id and timestamp")
	}
	if forked.ParentID != "u1" {
		t.Errorf("expected parent u1, got %q", forked.ParentID)
	}

	sibsAfter, _ := th.SiblingsOf("a1")
	if len(sibsAfter) != len(sibsBefore)+1 {
		t.Errorf("expected %d siblings, got %d", len(sibsBefore)+1, len(sibsAfter))
	}
	after := th.Messages()
	for i, m := range before {
		if after[i] != m {
			t.Errorf("message %s changed by fork", m.ID)
		}
	}
}

func TestForkUnknownParent(t *testing.T) {
	if _, err := New().Fork("x", models.Message{Role: models.RoleUser}); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("expected ErrUnknownParent, got %v", err)
	}
}

func TestAttachAudio(t *testing.T) {
	th := buildBranching(t)
	if err := th.AttachAudio("a2", "UENN"); err != nil {
		t.Fatal(err)
	}
	m, _ := th.Get("a2")
	if m.Audio != "UENN" {
		t.Errorf("expected audio attached, got %q", m.Audio)
	}
	if err := th.AttachAudio("gone", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIndexInPath(t *testing.T) {
	th := buildBranching(t)
	_ = th.SetActive("a2")
	if got := th.IndexInPath("u2"); got != 2 {
		t.Errorf("expected index 2, got %d", got)
	}
	if got := th.IndexInPath("a1b"); got != -1 {
		t.Errorf("expected -1 for an off-path message, got %d", got)
	}
}

func TestReplaceAndReset(t *testing.T) {
	th := buildBranching(t)
	th.Replace([]models.Message{msg("n1", "", models.RoleUser), msg("n1", "", models.RoleUser)}, "missing")
	if th.Len() != 1 {
		t.Errorf("expected duplicate dropped, got %d messages", th.Len())
	}
	if th.ActiveID() != "" {
		t.Errorf("expected unknown active id cleared, got %q", th.ActiveID())
	}
	th.Reset()
	if th.Len() != 0 || th.ActiveID() != "" {
		t.Error("expected empty thread after reset")
	}
}

func TestNewIDIsOrdered(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatal("expected unique ids")
	}
	if a > b {
		t.Errorf("expected %s to sort before %s", a, b)
	}
}
