package dto

import (
	"time"

	"github.com/yigit/campusportal/internal/app/models"
)

// NavItem is one entry in the navigation chrome
type NavItem struct {
	Label string `json:"label" example:"Accounts"`
	Path  string `json:"path" example:"/admin/accounts"`
}

// LayoutData describes the chrome a page is rendered inside
type LayoutData struct {
	Chrome string    `json:"chrome" example:"sidebar" enums:"sidebar,header,minimal"`
	Nav    []NavItem `json:"nav"`
}

// PageResponse is the page descriptor every portal route returns
type PageResponse struct {
	Page      string          `json:"page" example:"admin.dashboard"`
	Layout    LayoutData      `json:"layout"`
	Session   models.Session  `json:"session"`
	Data      interface{}     `json:"data,omitempty"`
	Error     *NormalizedData `json:"error,omitempty"`
	Client    *ClientConfig   `json:"client,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ClientConfig is the browser-side integration setup shipped with every page
type ClientConfig struct {
	ImageBaseURL   string `json:"imageBaseUrl"`
	RealtimeAppKey string `json:"realtimeAppKey"`
	AnalyticsID    string `json:"analyticsId"`
}

// NormalizedData is the wire form of a normalized client-side error
type NormalizedData struct {
	Kind    string      `json:"kind" example:"validation"`
	Status  int         `json:"status" example:"400"`
	Message string      `json:"message" example:"invalid data"`
	Data    interface{} `json:"data,omitempty"`
}

// NewPageResponse creates a page descriptor stamped with the current time
func NewPageResponse(page string, layout LayoutData, session models.Session, data interface{}) PageResponse {
	return PageResponse{
		Page:      page,
		Layout:    layout,
		Session:   session,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// UserListData is the payload of account listings
type UserListData struct {
	Items []models.User `json:"items"`
	Total int           `json:"total"`
}

// NewUserListData wraps users
func NewUserListData(users []models.User) UserListData {
	if users == nil {
		users = []models.User{}
	}
	return UserListData{Items: users, Total: len(users)}
}

// RoleCount is one bar of the admin dashboard
type RoleCount struct {
	Role  models.Role `json:"role"`
	Count int         `json:"count"`
}

// AdminDashboardData summarizes the account directory
type AdminDashboardData struct {
	TotalUsers int         `json:"totalUsers"`
	ByRole     []RoleCount `json:"byRole"`
}

// StudyGroup is a set of students sharing a major
type StudyGroup struct {
	Major    string        `json:"major"`
	Students []models.User `json:"students"`
}

// GroupMatchData is the payload of the student group-matching page
type GroupMatchData struct {
	Groups []StudyGroup `json:"groups"`
}

// WelcomeData greets the signed-in user on role home pages
type WelcomeData struct {
	Greeting string          `json:"greeting"`
	Profile  *models.Profile `json:"profile,omitempty"`
}
