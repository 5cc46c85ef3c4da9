package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
)

const loginPage = `<!doctype html>
<html><head><meta charset="utf-8"><title>Kupovina</title></head>
<body>
<form id="login">
<input name="username" placeholder="username" autocomplete="username">
<input name="password" type="password" placeholder="password" autocomplete="current-password">
<button>Sign in</button>
<p id="err"></p>
</form>
<script>
document.getElementById("login").onsubmit = async (e) => {
  e.preventDefault();
  const f = new FormData(e.target);
  const res = await fetch("/api/login", {method: "POST", headers: {"Content-Type": "application/json"},
    body: JSON.stringify({username: f.get("username"), password: f.get("password")})});
  if (res.ok) { location.href = "/"; return; }
  document.getElementById("err").textContent = (await res.json()).error || res.statusText;
};
</script>
</body></html>
`

const appPage = `<!doctype html>
<html><head><meta charset="utf-8"><title>Kupovina</title></head>
<body>
<pre id="view">connecting...</pre>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/api/stream");
ws.onmessage = (m) => { document.getElementById("view").textContent = JSON.stringify(JSON.parse(m.data).view, null, 2); };
document.addEventListener("visibilitychange", () => {
  if (document.visibilityState === "visible" && ws.readyState === 1) ws.send(JSON.stringify({type: "ping"}));
});
</script>
</body></html>
`

func servePage(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(body))
	}
}

// LoginPage serves the sign-in form.
func LoginPage(d deps.Deps) http.HandlerFunc { return servePage(loginPage) }

// AppPage serves the signed-in shell, which renders the live view stream.
func AppPage(d deps.Deps) http.HandlerFunc { return servePage(appPage) }
