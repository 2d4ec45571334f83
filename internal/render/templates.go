package render

const fragmentTemplates = `
{{define "story"}}<li id="story-{{.Story.ID}}" class="story">
{{- if .Deletable}}<span class="delete-story" hx-delete="{{.Path}}" hx-target="#my-stories" hx-swap="outerHTML"><i class="fas fa-trash-alt"></i></span>{{end}}
{{- if .Star}}<span class="fav-star" hx-post="{{.FavoritePath}}" hx-target="closest li" hx-swap="outerHTML"><i class="fa-star {{.Star}}"></i></span>{{end -}}
<a href="{{.Story.URL}}" target="_blank" rel="noopener" class="story-link">{{.Story.Title}}</a> <small class="story-hostname">({{.HostName}})</small> <small class="story-author">by {{.Story.Author}}</small> <small class="story-user">posted by {{.Story.Username}}</small></li>{{end}}

{{define "empty"}}<a href="{{.Href}}"{{if .Route}} hx-get="{{.Href}}" hx-target="{{.Target}}" hx-swap="outerHTML"{{end}} class="empty-state"><h5>{{.Text}}</h5></a>{{end}}

{{define "error"}}<div class="error-banner" role="alert">{{.}}</div>{{end}}

{{define "list"}}<ol id="{{.ID}}" class="stories-list"{{if not .Visible}} hidden{{end}}>{{range .Items}}{{.}}{{end}}</ol>{{end}}
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Hack or Snooze</title>
    <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
    <script src="https://unpkg.com/htmx.org@1.9.12"></script>
    <style>
        body { font-family: 'JetBrains Mono', monospace; background: #f6f6ef; margin: 0; }
        nav { background: #ff6600; padding: 6px 12px; }
        nav a, nav span { color: #000; margin-right: 12px; text-decoration: none; }
        .stories-list { padding-left: 20px; }
        .story { margin: 6px 0; }
        .story small { color: #828282; }
        .fav-star, .delete-story { cursor: pointer; margin-right: 6px; }
        .error-banner { background: #ffdddd; border: 1px solid #cc0000; padding: 8px; margin: 8px; }
        form { margin: 12px; }
    </style>
</head>
<body>
<nav>
    <a href="/" hx-get="/views/all" hx-target="#all-stories-list" hx-swap="outerHTML">Hack or Snooze</a>
    {{- if .Viewer}}
    <a href="#story-form">submit</a>
    <a href="/views/favorites" hx-get="/views/favorites" hx-target="#favorited-stories" hx-swap="outerHTML">favorites</a>
    <a href="/views/own" hx-get="/views/own" hx-target="#my-stories" hx-swap="outerHTML">my stories</a>
    <span class="nav-user">{{.Viewer.Username}}</span>
    <form action="/logout" method="post" style="display:inline"><button type="submit">logout</button></form>
    {{- else}}
    <a href="#login-form">login/signup</a>
    {{- end}}
</nav>
<div id="messages">{{if .Error}}{{template "error" .Error}}{{end}}</div>
{{- if .Viewer}}
<form id="story-form" hx-post="/stories" hx-target="#all-stories-list" hx-swap="outerHTML">
    <input name="author" placeholder="author name" required>
    <input name="title" placeholder="story title" required>
    <input name="url" placeholder="story url" required>
    <button type="submit">submit</button>
</form>
<form id="import-form" hx-post="/stories/import" hx-target="#all-stories-list" hx-swap="outerHTML">
    <input name="feed_url" placeholder="RSS or Atom feed url" required>
    <button type="submit">import</button>
</form>
{{- else}}
<form id="login-form" action="/login" method="post">
    <input name="username" placeholder="username" required>
    <input name="password" type="password" placeholder="password" required>
    <button type="submit">login</button>
</form>
<form id="signup-form" action="/signup" method="post">
    <input name="name" placeholder="name">
    <input name="username" placeholder="username" required>
    <input name="password" type="password" placeholder="password" required>
    <button type="submit">create account</button>
</form>
{{- end}}
<section>
{{range .Lists}}{{.}}
{{end}}</section>
</body>
</html>
`
