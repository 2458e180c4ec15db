// Package dialog porte les dialogues d'ajout / édition et de confirmation de suppression.
package dialog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"inventory_back_end/internal/client"
	"inventory_back_end/internal/icons"
	"inventory_back_end/internal/models"
	"inventory_back_end/internal/store"
)

// Store est le sous-ensemble de store.Store utilisé par les dialogues.
type Store interface {
	Snapshot() store.State
	AddProduct(ctx context.Context, draft models.Product) store.Result
	UpdateProduct(ctx context.Context, record models.Product) store.Result
	DeleteProduct(ctx context.Context, id string) store.Result
	SetSelectedProduct(p *models.Product)
	SetOpenProductDialog(open bool)
	SetOpenDeleteDialog(open bool)
}

type Mode int

const (
	ModeClosed Mode = iota
	ModeNew
	ModeEditing
	ModeSubmitting
)

func (m Mode) String() string {
	switch m {
	case ModeNew:
		return "new"
	case ModeEditing:
		return "editing"
	case ModeSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

var ErrNotOpen = errors.New("dialog is not open")

type ProductDialog struct {
	store    Store
	notifier Notifier

	mode    Mode
	form    Form
	errors  FieldErrors
	editing *models.Product
}

func NewProductDialog(st Store, notifier Notifier) *ProductDialog {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ProductDialog{store: st, notifier: notifier}
}

func (d *ProductDialog) Mode() Mode          { return d.mode }
func (d *ProductDialog) Form() Form          { return d.form }
func (d *ProductDialog) Errors() FieldErrors { return d.errors }

// Editing retourne l'enregistrement en cours d'édition, nil en mode ajout.
func (d *ProductDialog) Editing() *models.Product {
	if d.editing == nil {
		return nil
	}
	p := *d.editing
	return &p
}

func (d *ProductDialog) OpenNew() {
	d.mode = ModeNew
	d.form = Form{Icon: icons.DefaultName}
	d.errors = nil
	d.editing = nil
	d.store.SetSelectedProduct(nil)
	d.store.SetOpenProductDialog(true)
}

func (d *ProductDialog) OpenEdit(p models.Product) {
	d.mode = ModeEditing
	d.form = FormFromProduct(p)
	d.errors = nil
	d.editing = &p
	d.store.SetSelectedProduct(&p)
	d.store.SetOpenProductDialog(true)
}

// Sync ouvre le dialogue si le store le demande (action "Edit" d'une ligne).
func (d *ProductDialog) Sync() {
	st := d.store.Snapshot()
	switch {
	case !st.ProductDialogOpen && d.mode != ModeSubmitting:
		d.mode = ModeClosed
	case st.ProductDialogOpen && d.mode == ModeClosed:
		if st.Selected != nil {
			d.OpenEdit(*st.Selected)
		} else {
			d.OpenNew()
		}
	}
}

func (d *ProductDialog) Set(field, value string) error {
	if d.mode != ModeNew && d.mode != ModeEditing {
		return ErrNotOpen
	}
	if err := d.form.Set(field, value); err != nil {
		return err
	}
	delete(d.errors, field)
	return nil
}

func (d *ProductDialog) SelectIcon(name string) error {
	if _, ok := icons.Lookup(name); !ok {
		return errors.New("unknown icon " + name)
	}
	return d.Set("icon", name)
}

// Submit valide puis envoie. En cas d'échec le dialogue reste ouvert avec la saisie.
func (d *ProductDialog) Submit(ctx context.Context) bool {
	if d.mode != ModeNew && d.mode != ModeEditing {
		return false
	}
	base := models.Product{ID: uuid.NewString()}
	if d.mode == ModeEditing {
		base = *d.editing
	}
	record, err := d.form.Apply(base)
	if err != nil {
		var fe FieldErrors
		if !errors.As(err, &fe) {
			fe = FieldErrors{"form": err.Error()}
		}
		d.errors = fe
		return false
	}

	previous := d.mode
	d.mode = ModeSubmitting

	var (
		res     store.Result
		success string
		failure string
	)
	if previous == ModeEditing {
		res = d.store.UpdateProduct(ctx, record)
		success, failure = "Product updated successfully", "Failed to update product"
	} else {
		res = d.store.AddProduct(ctx, record)
		success, failure = "Product added successfully", "Failed to add product"
	}

	if res.Success {
		d.notifier.Success(success)
		d.close()
		return true
	}

	d.notifier.Error(failureMessage(res.Err, failure))
	d.mode = previous
	d.errors = serverFieldErrors(res.Err)
	// Le store ferme le dialogue après une mise à jour, même ratée.
	d.store.SetSelectedProduct(d.editing)
	d.store.SetOpenProductDialog(true)
	return false
}

func (d *ProductDialog) Cancel() {
	d.close()
}

func (d *ProductDialog) close() {
	d.mode = ModeClosed
	d.form = Form{}
	d.errors = nil
	d.editing = nil
	d.store.SetOpenProductDialog(false)
	d.store.SetSelectedProduct(nil)
}

func failureMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < 500 {
		return apiErr.Message
	}
	return fallback
}

func serverFieldErrors(err error) FieldErrors {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Field == "" {
		return nil
	}
	return FieldErrors{apiErr.Field: apiErr.Message}
}
