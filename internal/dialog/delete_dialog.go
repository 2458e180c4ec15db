package dialog

import (
	"context"

	"inventory_back_end/internal/models"
)

type DeleteDialog struct {
	store    Store
	notifier Notifier
	target   *models.Product
}

func NewDeleteDialog(st Store, notifier Notifier) *DeleteDialog {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &DeleteDialog{store: st, notifier: notifier}
}

func (d *DeleteDialog) IsOpen() bool { return d.target != nil }

func (d *DeleteDialog) Target() *models.Product {
	if d.target == nil {
		return nil
	}
	p := *d.target
	return &p
}

func (d *DeleteDialog) Open(p models.Product) {
	d.target = &p
	d.store.SetSelectedProduct(&p)
	d.store.SetOpenDeleteDialog(true)
}

// Sync reprend la cible depuis le store (action "Delete" d'une ligne).
func (d *DeleteDialog) Sync() {
	st := d.store.Snapshot()
	if st.DeleteDialogOpen && st.Selected != nil {
		p := *st.Selected
		d.target = &p
		return
	}
	if !st.DeleteDialogOpen {
		d.target = nil
	}
}

// Confirm supprime la cible ; le store ferme le dialogue quelle que soit l'issue.
func (d *DeleteDialog) Confirm(ctx context.Context) bool {
	if d.target == nil {
		return false
	}
	target := *d.target
	d.target = nil

	res := d.store.DeleteProduct(ctx, target.ID)
	if res.Success {
		d.notifier.Success("Product deleted successfully")
		return true
	}
	d.notifier.Error("Failed to delete product")
	return false
}

func (d *DeleteDialog) Cancel() {
	d.target = nil
	d.store.SetSelectedProduct(nil)
	d.store.SetOpenDeleteDialog(false)
}
