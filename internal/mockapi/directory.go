package mockapi

import (
	"strings"
	"sync"
	"time"

	"github.com/yigit/campusportal/internal/app/models"
)

// Directory is the in-memory account list the mock backend serves
type Directory struct {
	mu    sync.RWMutex
	users []models.User
}

// NewDirectory creates a directory holding users
func NewDirectory(users []models.User) *Directory {
	return &Directory{users: append([]models.User(nil), users...)}
}

// DefaultDirectory returns the fixture accounts. Roles use the backend's
// legacy spellings.
func DefaultDirectory() *Directory {
	created := time.Date(2024, time.September, 1, 8, 0, 0, 0, time.UTC)
	return NewDirectory([]models.User{
		{ID: 1, Email: "admin@fe-swd.com", Username: "admin", FullName: "Portal Administrator", Role: "Admin", IsActive: true, CreatedAt: created},
		{ID: 2, Email: "student@fe-swd.com", Username: "student", FullName: "Nguyen Van An", Role: "Student", Major: "Software Engineering", IsActive: true, CreatedAt: created},
		{ID: 3, Email: "moderator@fe-swd.com", Username: "moderator", FullName: "Tran Thi Binh", Role: "Moderator", IsActive: true, CreatedAt: created},
		{ID: 4, Email: "lecturer@fe-swd.com", Username: "lecturer", FullName: "Le Van Cuong", Role: "Lecture", IsActive: true, CreatedAt: created},
		{ID: 5, Email: "student2@fe-swd.com", Username: "student2", FullName: "Pham Thi Dung", Role: "Student", Major: "Artificial Intelligence", IsActive: true, CreatedAt: created},
		{ID: 6, Email: "student3@fe-swd.com", Username: "student3", FullName: "Hoang Van Em", Role: "Student", Major: "Software Engineering", IsActive: false, CreatedAt: created},
	})
}

// FindByEmail looks an account up by email, ignoring case
func (d *Directory) FindByEmail(email string) (models.User, bool) {
	email = strings.TrimSpace(email)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

// Touch records a login time for id
func (d *Directory) Touch(id int64, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			t := at
			d.users[i].LastLoginAt = &t
			return
		}
	}
}

// UserFilter narrows a listing. Empty fields match everything.
type UserFilter struct {
	Roles []string
	Query string
}

// List returns the accounts matching f in id order. Roles compare by their
// canonical form so "STUDENT" matches a stored "Student".
func (d *Directory) List(f UserFilter) []models.User {
	roles := make(map[models.Role]struct{}, len(f.Roles))
	for _, r := range f.Roles {
		roles[models.ParseRole(r)] = struct{}{}
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.User, 0, len(d.users))
	for _, u := range d.users {
		if len(roles) > 0 {
			if _, ok := roles[models.ParseRole(u.Role)]; !ok {
				continue
			}
		}
		if q != "" && !matches(u, q) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func matches(u models.User, q string) bool {
	for _, field := range []string{u.Email, u.Username, u.FullName, u.Major} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
