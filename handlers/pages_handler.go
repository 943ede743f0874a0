package handlers

import (
	"html/template"
	"net/http"

	"github.com/aryngazy/fest-system/middleware"
	"github.com/aryngazy/fest-system/models"
)

// pageTmpl — общий каркас страниц. Фронтенд минимальный: статические тексты,
// форма регистрации и список заявок рендерятся сервером, динамика — fetch к
// /api/v1.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — Fest</title>
</head>
<body>
<nav>
<a href="/">Home</a>
{{if .LoggedIn}}<a href="/register">Register</a> <a href="/user/events">My Events</a> <a href="/auth/logout">Log out</a>{{else}}<a href="/login">Log in</a>{{end}}
</nav>
<main>
{{block "content" .}}{{end}}
</main>
<footer>
<a href="/support">Support</a> <a href="/terms-of-service">Terms of Service</a> <a href="/privacy-policy">Privacy Policy</a> <a href="/cancellation">Cancellation &amp; Refunds</a>
</footer>
</body>
</html>`))

type pageData struct {
	Title    string
	LoggedIn bool
	User     *models.User
	Events   []models.Event
}

type PageHandler struct {
	pages map[string]*template.Template
}

func NewPageHandler() *PageHandler {
	h := &PageHandler{pages: make(map[string]*template.Template)}
	for name, content := range pageContent {
		t := template.Must(pageTmpl.Clone())
		template.Must(t.Parse(content))
		h.pages[name] = t
	}
	return h
}

// pageContent — тела страниц; каждая переопределяет блок content каркаса.
var pageContent = map[string]string{
	"home": `{{define "content"}}
<h1>Fest</h1>
<p>The annual tech and gaming festival. Seven events, one weekend.</p>
<ul>
{{range .Events}}<li>{{.Name}}{{if gt .TeamSize 1}} (team of {{.TeamSize}}){{end}} — entry fee {{.Fee}}</li>
{{end}}</ul>
<p><a href="/register">Register now</a></p>
{{end}}`,

	"login": `{{define "content"}}
<h1>Log in</h1>
<p>Sign in to register for events and track your registrations.</p>
<p><a href="/auth/google/login">Continue with Google</a></p>
<p><a href="/auth/github/login">Continue with GitHub</a></p>
{{end}}`,

	"register": `{{define "content"}}
<h1>Register</h1>
<form id="register-form" action="/api/v1/register" method="post" enctype="multipart/form-data">
<label>Event
<select name="event" required>
{{range .Events}}<option value="{{.ID}}">{{.Name}} — fee {{.Fee}}</option>
{{end}}</select>
</label>
<label>Full name <input type="text" name="name" required></label>
<label>Email <input type="email" name="email" value="{{.User.Email}}" required></label>
<label>Phone <input type="tel" name="phone" required></label>
<label>Team name <input type="text" name="teamName"></label>
<label>Team members (comma-separated emails) <input type="text" name="teamMembers"></label>
<label>Payment screenshot <input type="file" name="paymentScreenshot" accept="image/*" required></label>
<label>Payment transaction ID <input type="text" name="paymentTransactionId" required></label>
<button type="submit">Submit</button>
</form>
<p id="register-result"></p>
<script>
document.getElementById("register-form").addEventListener("submit", async (e) => {
	e.preventDefault();
	const out = document.getElementById("register-result");
	out.textContent = "Submitting…";
	try {
		const resp = await fetch("/api/v1/register", { method: "POST", body: new FormData(e.target) });
		const data = await resp.json();
		out.textContent = data.message;
		if (data.status === "success") e.target.reset();
	} catch {
		out.textContent = "Oops! Something went wrong. Please try again later";
	}
});
</script>
{{end}}`,

	"events": `{{define "content"}}
<h1>My Events</h1>
<ul id="my-registrations"><li>Loading…</li></ul>
<script>
fetch("/api/v1/me/registrations").then(r => r.json()).then(data => {
	const list = document.getElementById("my-registrations");
	list.innerHTML = "";
	if (!data.registrations || data.registrations.length === 0) {
		list.innerHTML = "<li>No registrations yet. <a href='/register'>Register</a></li>";
		return;
	}
	for (const reg of data.registrations) {
		const li = document.createElement("li");
		li.textContent = reg.event_name + " — " + reg.status;
		list.appendChild(li);
	}
});
</script>
{{end}}`,

	"support": `{{define "content"}}
<h1>Support</h1>
<p>Questions about events, payments or your registration? Write to us at
<a href="mailto:support@fest.example.com">support@fest.example.com</a> and we
will get back to you within one business day.</p>
{{end}}`,

	"terms": `{{define "content"}}
<h1>Terms of Service</h1>
<p>By registering for a Fest event you agree to follow the event rules and the
decisions of the organizing committee. Registrations are reviewed manually and
a submitted registration does not guarantee a spot until it is approved.</p>
<p>Entry fees are listed per event on the registration form. Team events
require the full roster at registration time; roster changes after approval
are at the discretion of the organizers.</p>
{{end}}`,

	"privacy": `{{define "content"}}
<h1>Privacy Policy</h1>
<p>We store the name, email address and phone number you submit, together with
your payment screenshot and transaction ID, solely to run the festival. Sign-in
is delegated to Google or GitHub; we never see your password.</p>
<p>Your data is not shared with third parties and is deleted after the
festival concludes. Contact <a href="mailto:support@fest.example.com">support</a>
to request early deletion.</p>
{{end}}`,

	"cancellation": `{{define "content"}}
<h1>Cancellation &amp; Refunds</h1>
<p>Registrations can be cancelled up to 48 hours before the event by writing
to support with your transaction ID. Approved cancellations are refunded in
full to the original payment method within 5–7 business days.</p>
<p>No refunds are issued for no-shows or for registrations rejected due to
invalid payment details.</p>
{{end}}`,
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name, title string) {
	data := pageData{Title: title, Events: models.AllEvents()}
	if session, ok := middleware.SessionFromContext(r.Context()); ok && session.Authenticated() {
		data.LoggedIn = true
		data.User = session.User
	}
	if data.User == nil {
		data.User = &models.User{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[name].Execute(w, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, "home", "Home")
}

// LoginPage показывает кнопки провайдеров; уже вошедшего отправляем дальше.
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session, ok := middleware.SessionFromContext(r.Context()); ok && session.Authenticated() {
		http.Redirect(w, r, "/user/events", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", "Log in")
}

func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", "Register")
}

func (h *PageHandler) MyEventsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "events", "My Events")
}

func (h *PageHandler) Support(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "support", "Support")
}

func (h *PageHandler) Terms(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "terms", "Terms of Service")
}

func (h *PageHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "privacy", "Privacy Policy")
}

func (h *PageHandler) Cancellation(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "cancellation", "Cancellation & Refunds")
}
