// Package pages holds full-page components.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"spportal/interfaces/web/presenters"
	"spportal/interfaces/web/templates/components/core"
)

// PortalOverviewPage renders the endpoint, the signed-in user and the visible lists.
func PortalOverviewPage(vm presenters.PortalOverviewVM) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Portal · `)
		p.text(vm.Endpoint)
		p.raw(`</title></head><body class="bg-slate-50 text-slate-900"><main class="max-w-5xl mx-auto p-6">`)

		p.raw(`<header class="mb-6"><h1 class="text-2xl font-semibold">`)
		p.text(vm.Endpoint)
		p.raw(`</h1>`)
		if vm.User != nil {
			p.raw(`<p class="text-sm text-slate-600">Signed in as <span class="font-medium">`)
			p.text(vm.User.DisplayName)
			p.raw(`</span> (`)
			p.text(vm.User.LoginName)
			p.raw(`)`)
			if vm.User.IsSiteAdmin {
				p.raw(` <span class="px-2 rounded `)
				p.attr(core.StatusClass(true))
				p.raw(`">site admin</span>`)
			}
			p.raw(`</p>`)
		}
		p.raw(`</header>`)

		p.raw(`<section><h2 class="text-lg font-medium mb-2">Lists</h2><p class="text-sm text-slate-500 mb-4">`)
		p.text(fmt.Sprintf("%d visible, %d hidden, %d items", len(vm.Lists), vm.HiddenCount, vm.TotalItems))
		p.raw(`</p>`)
		if len(vm.Lists) == 0 {
			p.raw(`<p class="text-slate-500">No visible lists.</p>`)
		} else {
			p.raw(`<table class="w-full text-sm"><thead><tr><th class="text-left">Title</th><th class="text-left">Kind</th><th class="text-right">Items</th></tr></thead><tbody>`)
			for _, l := range vm.Lists {
				p.raw(`<tr id="list-`)
				p.attr(l.ID)
				p.raw(`"><td>`)
				if l.URL != "" {
					p.raw(`<a class="text-blue-700 hover:underline" href="`)
					p.attr(string(templ.URL(l.URL)))
					p.raw(`">`)
					p.text(l.Title)
					p.raw(`</a>`)
				} else {
					p.text(l.Title)
				}
				p.raw(`</td><td><span class="px-2 rounded `)
				p.attr(core.ListKindClass(l.IsLibrary))
				p.raw(`">`)
				p.text(core.ListKindLabel(l.IsLibrary))
				p.raw(`</span></td><td class="text-right">`)
				p.text(l.ItemCountLabel)
				p.raw(`</td></tr>`)
			}
			p.raw(`</tbody></table>`)
		}
		p.raw(`</section></main></body></html>`)
		return p.err
	})
}

// printer writes escaped HTML and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) attr(s string) {
	p.raw(templ.EscapeString(s))
}
