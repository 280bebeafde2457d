package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fitness-tracking/internal/factory"
	"github.com/mcoot/fitness-tracking/internal/testutil"
	"github.com/mcoot/fitness-tracking/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	return &webTestServer{
		t:       t,
		handler: newRouter(app, 0, 0),
		app:     app,
		cookies: newCookieJar(),
	}
}

func newRouter(app *factory.TestApp, rateLimit float64, burst int) http.Handler {
	return web.NewRouter(web.RouterConfig{
		Logger:        testutil.NopLogger(),
		Provider:      app.Provider,
		Signup:        app.Signup,
		Gate:          app.Gate,
		Docs:          app.Docs,
		HubManager:    app.HubManager,
		IDs:           app.IDs,
		FormRateLimit: rateLimit,
		FormRateBurst: burst,
		StaticDir:     "", // No static files in tests
	})
}

// newBrowser returns another browser sharing the same server
func (ts *webTestServer) newBrowser() *webTestServer {
	return &webTestServer{
		t:       ts.t,
		handler: ts.handler,
		app:     ts.app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// followRedirect follows a single redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// followRedirects follows redirects until a non-redirect response, returning
// it with the path it was served from
func (ts *webTestServer) followRedirects(rr *httptest.ResponseRecorder) (*httptest.ResponseRecorder, string) {
	ts.t.Helper()
	path := ""
	for i := 0; i < 10; i++ {
		if rr.Code < 300 || rr.Code >= 400 {
			return rr, path
		}
		path = rr.Header().Get("Location")
		rr = ts.followRedirect(rr)
	}
	ts.t.Fatal("too many redirects")
	return nil, ""
}

// signup submits the signup form and returns the final page and its path
func (ts *webTestServer) signup(email, password, repeat string) (*httptest.ResponseRecorder, string) {
	ts.t.Helper()
	rr := ts.post("/account/signup", url.Values{
		"email":           {email},
		"password":        {password},
		"password_repeat": {repeat},
	})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after signup submission")
	return ts.followRedirects(rr)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// clientID returns the client ID held in the session cookie
func (j *cookieJar) clientID() string {
	if c, ok := j.cookies["session"]; ok {
		return c.Value
	}
	return ""
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
