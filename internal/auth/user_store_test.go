package auth

import "testing"

func TestMemoryUserRepositorySeedsAdmin(t *testing.T) {
	repo, err := NewMemoryUserRepository("admin", "s3cret-pass")
	if err != nil {
		t.Fatalf("NewMemoryUserRepository: %v", err)
	}

	user, hash, err := repo.GetByUsername("admin")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.Role != RoleAdmin {
		t.Errorf("expected seed user to be admin, got %s", user.Role)
	}
	if hash == "" || hash == "s3cret-pass" {
		t.Errorf("expected password to be hashed, got %q", hash)
	}

	byEmail, _, err := repo.GetByEmail(user.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetByEmail returned a different user than GetByUsername")
	}
}

func TestMemoryUserRepositoryUnknownUser(t *testing.T) {
	repo, err := NewMemoryUserRepository("admin", "s3cret-pass")
	if err != nil {
		t.Fatalf("NewMemoryUserRepository: %v", err)
	}

	if _, _, err := repo.GetByUsername("nobody"); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
