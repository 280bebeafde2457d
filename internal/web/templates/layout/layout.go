// Package layout provides the page shell shared by every page.
package layout

import "github.com/mcoot/fitness-tracking/internal/model"

// FlashMessage is a one-shot notice shown on the next page
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}

// PageData is shared by every page
type PageData struct {
	Title string
	User  *model.Account
	Flash *FlashMessage
	// Live subscribes the page to /events so session changes reach it
	Live bool
}

// liveScript follows gate navigations pushed over SSE
const liveScript = `<script>
(function () {
  var source = new EventSource("/events");
  source.addEventListener("navigate", function (e) {
    if (window.location.pathname !== e.data) {
      window.location.assign(e.data);
    }
  });
  source.addEventListener("stream-error", function (e) {
    var banner = document.getElementById("stream-error");
    if (banner) {
      banner.textContent = e.data;
      banner.hidden = false;
    }
  });
})();
</script>`
