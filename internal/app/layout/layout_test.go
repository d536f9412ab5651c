package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/navigation"
)

func TestChromeFor(t *testing.T) {
	assert.Equal(t, ChromeSidebar, ChromeFor(models.RoleAdmin))
	assert.Equal(t, ChromeSidebar, ChromeFor(models.RoleModerator))
	assert.Equal(t, ChromeHeader, ChromeFor(models.RoleStudent))
	assert.Equal(t, ChromeHeader, ChromeFor(models.Role("Lecture")))
	assert.Equal(t, ChromeMinimal, ChromeFor(models.RoleUnknown))
}

func TestSelector_NavFollowsRouteTable(t *testing.T) {
	sel := NewSelector(navigation.DefaultTable())

	admin := sel.Select(models.Session{IsAuthenticated: true, Role: models.RoleAdmin})
	assert.Equal(t, "sidebar", admin.Chrome)
	require.Len(t, admin.Nav, 2)
	assert.Equal(t, navigation.AdminDashboardPath, admin.Nav[0].Path)
	assert.Equal(t, navigation.AdminAccountsPath, admin.Nav[1].Path)

	student := sel.Select(models.Session{IsAuthenticated: true, Role: models.RoleStudent})
	assert.Equal(t, "header", student.Chrome)
	paths := make([]string, 0, len(student.Nav))
	for _, item := range student.Nav {
		paths = append(paths, item.Path)
	}
	assert.Equal(t, []string{navigation.StudentDashboardPath, navigation.StudentGroupsPath, navigation.ForumPath}, paths)
}

func TestSelector_AnonymousIsMinimal(t *testing.T) {
	sel := NewSelector(navigation.DefaultTable())
	got := sel.Select(models.Anonymous())
	assert.Equal(t, "minimal", got.Chrome)
	assert.Empty(t, got.Nav)
}
