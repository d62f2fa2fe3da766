// Package templates renders the browser shell and the fragments it polls
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"webhost/internal/bridge"
	"webhost/internal/host"
	"webhost/internal/overlay"

	"github.com/a-h/templ"
)

const shellScript = `
const webhost = {
  post(path, body) {
    return fetch(path, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body || {}),
    });
  },
  answer(id, confirmed) {
    const input = document.getElementById("dialog-value");
    return webhost.post("/ui/dialogs/" + id, {confirmed: confirmed, value: input ? input.value : ""});
  },
  shown(container) {
    const el = document.querySelector("#" + container + " [data-id]");
    return el ? el.dataset.id : "";
  },
  async follow() {
    const surface = document.getElementById("surface");
    const resp = await fetch("/ui/state");
    if (!surface || !resp.ok) return;
    const state = await resp.json();
    if (String(state.navigation) !== surface.dataset.navigation) {
      surface.dataset.navigation = String(state.navigation);
      surface.src = state.url;
    }
  },
  settings(id, action) {
    const input = document.getElementById("settings-url");
    return webhost.post("/ui/settings/" + id, {action: action, url: input ? input.value : ""});
  },
};
`

// Base wraps body in the shell page
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s</title>`, templ.EscapeString(title))
		b.WriteString(`<script src="https://unpkg.com/htmx.org@1.9.10"></script>`)
		b.WriteString(`<script src="https://cdn.tailwindcss.com"></script>`)
		b.WriteString(`<script>` + shellScript + `</script>`)
		b.WriteString(`</head><body class="bg-gray-900 text-gray-100">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Shell is the page layout: primary surface plus the polled overlay, dialog, settings and notices.
// navigation is the UI state's navigation counter for url.
func Shell(url string, navigation int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<iframe id="surface" class="w-full h-screen border-0" src="%s" data-navigation="%d"></iframe>`,
			templ.EscapeString(url), navigation)
		b.WriteString(`<div id="overlay" hx-get="/ui/overlay" hx-trigger="load, every 250ms" hx-swap="innerHTML"></div>`)
		// A poll for the dialog already on screen answers 204 and leaves the input alone
		b.WriteString(`<div id="dialog" hx-get="/ui/dialog" hx-trigger="load, every 500ms" hx-swap="innerHTML"`)
		b.WriteString(` hx-vals='js:{shown: webhost.shown("dialog")}'></div>`)
		b.WriteString(`<div id="settings" hx-get="/ui/settings" hx-trigger="load, every 500ms" hx-swap="innerHTML"`)
		b.WriteString(` hx-vals='js:{shown: webhost.shown("settings")}'></div>`)
		b.WriteString(`<div id="notices" class="fixed bottom-4 inset-x-0 flex flex-col items-center gap-2"`)
		b.WriteString(` hx-get="/ui/notice" hx-trigger="every 1s" hx-swap="beforeend"></div>`)
		b.WriteString(`<script>setInterval(webhost.follow, 500);</script>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Overlay renders the download overlay; nothing is drawn while it is hidden
func Overlay(view overlay.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if view.State == overlay.Hidden {
			return nil
		}

		color := "bg-blue-600"
		if view.Terminal && view.Succeeded {
			color = "bg-green-600"
		} else if view.Terminal {
			color = "bg-red-600"
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<div class="fixed top-4 inset-x-4 rounded-lg p-4 shadow-lg %s" data-state="%s"`,
			color, templ.EscapeString(view.StateName))
		b.WriteString(` onclick="webhost.post('/ui/overlay/dismiss')">`)
		fmt.Fprintf(&b, `<div class="font-semibold truncate">%s</div>`, templ.EscapeString(view.FileName))
		fmt.Fprintf(&b, `<div class="text-sm">%s</div>`, templ.EscapeString(view.Message))
		fmt.Fprintf(&b, `<div class="mt-2 h-2 rounded bg-gray-700"><div class="h-2 rounded bg-white" style="width: %d%%"></div></div>`,
			view.Percent)
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Dialog renders a pending JavaScript dialog; nil renders nothing
func Dialog(dialog *bridge.Dialog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if dialog == nil {
			return nil
		}

		id := templ.EscapeString(dialog.ID)
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="fixed inset-0 flex items-center justify-center bg-black/60" data-id="%s" data-kind="%s">`,
			id, templ.EscapeString(dialog.KindName))
		b.WriteString(`<div class="bg-gray-800 rounded-lg p-6 w-96">`)
		fmt.Fprintf(&b, `<p class="mb-4 whitespace-pre-wrap">%s</p>`, templ.EscapeString(dialog.Message))
		if dialog.Kind == bridge.Prompt {
			fmt.Fprintf(&b, `<input id="dialog-value" class="w-full mb-4 p-2 rounded bg-gray-700" value="%s">`,
				templ.EscapeString(dialog.DefaultValue))
		}
		b.WriteString(`<div class="flex justify-end gap-2">`)
		if dialog.Kind != bridge.Alert {
			fmt.Fprintf(&b, `<button class="px-4 py-2 rounded bg-gray-600" onclick="webhost.answer('%s', false)">Cancel</button>`, id)
		}
		fmt.Fprintf(&b, `<button class="px-4 py-2 rounded bg-blue-600" onclick="webhost.answer('%s', true)">OK</button>`, id)
		b.WriteString(`</div></div></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Settings renders the hidden settings dialog; nil renders nothing
func Settings(dialog *host.SettingsDialog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if dialog == nil {
			return nil
		}

		id := templ.EscapeString(dialog.ID)
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="fixed inset-0 flex items-center justify-center bg-black/60" data-id="%s">`, id)
		b.WriteString(`<div class="bg-gray-800 rounded-lg p-6 w-96">`)
		b.WriteString(`<h2 class="text-lg font-semibold mb-4">Home page</h2>`)
		fmt.Fprintf(&b, `<input id="settings-url" class="w-full mb-2 p-2 rounded bg-gray-700" value="%s">`,
			templ.EscapeString(dialog.CurrentURL))
		fmt.Fprintf(&b, `<p class="text-xs text-gray-400 mb-4">Default: %s</p>`, templ.EscapeString(dialog.DefaultURL))
		b.WriteString(`<div class="flex justify-end gap-2">`)
		fmt.Fprintf(&b, `<button class="px-4 py-2 rounded bg-gray-600" onclick="webhost.settings('%s', '%s')">Restore default</button>`,
			id, host.SettingsRestore)
		fmt.Fprintf(&b, `<button class="px-4 py-2 rounded bg-gray-600" onclick="webhost.settings('%s', '%s')">Cancel</button>`,
			id, host.SettingsCancel)
		fmt.Fprintf(&b, `<button class="px-4 py-2 rounded bg-blue-600" onclick="webhost.settings('%s', '%s')">Save</button>`,
			id, host.SettingsSave)
		b.WriteString(`</div></div></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Notices renders one toast per message
func Notices(messages []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		for _, message := range messages {
			fmt.Fprintf(&b, `<div class="px-4 py-2 rounded bg-gray-700 shadow">%s</div>`, templ.EscapeString(message))
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
