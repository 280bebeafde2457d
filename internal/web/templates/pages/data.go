// Package pages holds the full-page components.
package pages

import (
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
	"github.com/mcoot/fitness-tracking/internal/web/templates/layout"
)

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
	Email string
	Error string
}

// SignupData holds data for the signup page
type SignupData struct {
	layout.PageData
	Form signup.Form
}

// DashboardData holds data for the dashboard home page
type DashboardData struct {
	layout.PageData
	Profile    model.Profile
	HasProfile bool
}
