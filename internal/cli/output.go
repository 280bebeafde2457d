package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case ClientResult:
		fmt.Printf("Client: %s\n", v.ClientID)
	case Account:
		o.printAccount(v)
	case SignupResult:
		o.printSignupResult(v)
	case LoginResult:
		o.printAccount(v.Account)
		o.printRedirect(v.Redirect)
	case SessionResult:
		o.printSession(v)
	case Profile:
		fmt.Printf("Profile: %s (%s)\n", v.Name, v.ID)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// ClientResult response type
type ClientResult struct {
	ClientID string `json:"client_id"`
}

// Account response type (matches API)
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile response type
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SignupResult response type
type SignupResult struct {
	Account  Account  `json:"account"`
	Profile  *Profile `json:"profile"`
	Warning  string   `json:"warning,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// LoginResult response type
type LoginResult struct {
	Account  Account `json:"account"`
	Redirect string  `json:"redirect,omitempty"`
}

// SessionResult response type
type SessionResult struct {
	User      *Account   `json:"user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Location  string     `json:"location"`
	Redirect  string     `json:"redirect,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("Account: %s (%s)\n", a.Email, a.ID)
}

func (o *Output) printSignupResult(s SignupResult) {
	o.printAccount(s.Account)
	if s.Profile != nil {
		fmt.Printf("Profile: %s\n", s.Profile.Name)
	}
	if s.Warning != "" {
		fmt.Printf("Warning: %s\n", s.Warning)
	}
	o.printRedirect(s.Redirect)
}

func (o *Output) printSession(s SessionResult) {
	if s.User == nil {
		fmt.Println("Not signed in")
	} else {
		o.printAccount(*s.User)
		if s.ExpiresAt != nil {
			fmt.Printf("Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
		}
	}
	fmt.Printf("Location: %s\n", s.Location)
	o.printRedirect(s.Redirect)
}

func (o *Output) printRedirect(route string) {
	if route != "" {
		fmt.Printf("Go to: %s\n", route)
	}
}
