package clipboard

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page writes through the page's own clipboard facility
// (navigator.clipboard.writeText). This is the write the page itself would
// perform: it is asynchronous, permission-gated, and available only in
// secure contexts. A missing API rejects with a reason instead of crashing.
type Page struct {
	page *rod.Page
}

// NewPage creates a Page writer bound to a rod page.
func NewPage(p *rod.Page) *Page { return &Page{page: p} }

func (p *Page) Name() string { return "page" }

func (p *Page) Write(ctx context.Context, text string) error {
	_, err := p.page.Context(ctx).Eval(`async (text) => {
		if (!navigator.clipboard || !navigator.clipboard.writeText) {
			throw new Error("clipboard API unavailable (insecure context?)");
		}
		await navigator.clipboard.writeText(text);
		return true;
	}`, text)
	if err != nil {
		return fmt.Errorf("clipboard: page write rejected: %w", err)
	}
	return nil
}

// GrantPermissions grants clipboard write permission for an origin so the
// in-page write does not hang on a permission prompt. Best effort: some
// Chrome builds reject unknown permission names.
func GrantPermissions(b *rod.Browser, origin string) error {
	return proto.BrowserGrantPermissions{
		Origin: origin,
		Permissions: []proto.BrowserPermissionType{
			proto.BrowserPermissionTypeClipboardReadWrite,
			proto.BrowserPermissionTypeClipboardSanitizedWrite,
		},
	}.Call(b)
}
