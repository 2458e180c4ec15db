// Package store tient le cache produits côté client et l'état transitoire de l'interface.
// Toutes les écritures passent par l'API REST ; aucune action ne panique ni ne remonte d'erreur brute.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

// ProductAPI est implémentée par client.Client.
type ProductAPI interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, draft models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type State struct {
	Products          []models.Product
	Loading           bool
	ProductDialogOpen bool
	DeleteDialogOpen  bool
	Selected          *models.Product
}

func (s State) clone() State {
	out := s
	out.Products = append([]models.Product(nil), s.Products...)
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	return out
}

// Result est l'issue d'une action : Err n'est renseignée que si Success est faux.
type Result struct {
	Success bool
	Product *models.Product
	Err     error
}

type Store struct {
	api ProductAPI

	mu       sync.Mutex
	state    State
	inflight int

	// Séquencement par identifiant : seule la dernière requête émise pour un id
	// peut modifier son entrée, et un id supprimé ici ne revient jamais.
	seq     map[string]uint64
	deleted map[string]struct{}

	subs    map[int]func(State)
	nextSub int
}

func New(api ProductAPI) *Store {
	return &Store{
		api:     api,
		seq:     make(map[string]uint64),
		deleted: make(map[string]struct{}),
		subs:    make(map[int]func(State)),
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe appelle fn après chaque changement d'état. fn ne doit pas rappeler le store de façon bloquante.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applique mutate sous verrou puis notifie les abonnés hors verrou.
func (s *Store) update(mutate func(st *State)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) begin() {
	s.update(func(st *State) {
		s.inflight++
		st.Loading = true
	})
}

// end doit être appelé sous verrou (depuis update).
func (s *Store) end(st *State) {
	s.inflight--
	st.Loading = s.inflight > 0
}

func (s *Store) LoadProducts(ctx context.Context) Result {
	s.begin()

	products, err := s.api.ListProducts(ctx, models.ProductFilter{})
	if err != nil {
		zap.S().Errorf("❌ Chargement des produits: %v", err)
	}

	s.update(func(st *State) {
		defer s.end(st)
		if err != nil {
			return
		}
		fresh := make([]models.Product, 0, len(products))
		for _, p := range products {
			if _, gone := s.deleted[p.ID]; !gone {
				fresh = append(fresh, p)
			}
		}
		st.Products = fresh
	})

	if err != nil {
		return Result{Err: err}
	}
	return Result{Success: true}
}

func (s *Store) AddProduct(ctx context.Context, draft models.Product) Result {
	s.begin()

	created, err := s.api.CreateProduct(ctx, draft)
	if err != nil {
		zap.S().Errorf("❌ Ajout du produit %q: %v", draft.Name, err)
	}

	s.update(func(st *State) {
		defer s.end(st)
		if err != nil {
			return
		}
		// Supprimé entre-temps via le flux temps réel : ne pas le réintroduire.
		if _, gone := s.deleted[created.ID]; gone {
			return
		}
		// Le flux temps réel peut avoir déjà livré ce produit.
		if i := indexOf(st.Products, created.ID); i >= 0 {
			st.Products[i] = *created
			return
		}
		st.Products = append(st.Products, *created)
	})

	if err != nil {
		return Result{Err: err}
	}
	return Result{Success: true, Product: created}
}

// UpdateProduct envoie l'enregistrement complet. Quelle que soit l'issue, le dialogue
// d'édition est fermé et la sélection effacée.
func (s *Store) UpdateProduct(ctx context.Context, record models.Product) Result {
	ticket := s.issue(record.ID)
	s.begin()

	updated, err := s.api.UpdateProduct(ctx, record.ID, models.FullUpdate(record))
	if err != nil {
		zap.S().Errorf("❌ Mise à jour du produit %s: %v", record.ID, err)
	}

	s.update(func(st *State) {
		defer s.end(st)
		st.ProductDialogOpen = false
		st.Selected = nil
		if err != nil || !s.current(record.ID, ticket) {
			return
		}
		if i := indexOf(st.Products, updated.ID); i >= 0 {
			st.Products[i] = *updated
		}
	})

	if err != nil {
		return Result{Err: err}
	}
	return Result{Success: true, Product: updated}
}

// DeleteProduct ferme toujours le dialogue de confirmation et efface la sélection.
func (s *Store) DeleteProduct(ctx context.Context, id string) Result {
	s.issue(id)
	s.begin()

	err := s.api.DeleteProduct(ctx, id)
	if err != nil {
		zap.S().Errorf("❌ Suppression du produit %s: %v", id, err)
	}

	s.update(func(st *State) {
		defer s.end(st)
		st.DeleteDialogOpen = false
		st.Selected = nil
		if err != nil {
			return
		}
		s.deleted[id] = struct{}{}
		st.Products = remove(st.Products, id)
	})

	if err != nil {
		return Result{Err: err}
	}
	return Result{Success: true}
}

// ApplyEvent réconcilie le cache avec un changement poussé par le serveur.
func (s *Store) ApplyEvent(ev models.ProductEvent) {
	s.update(func(st *State) {
		if _, gone := s.deleted[ev.ID]; gone {
			return
		}
		switch ev.Type {
		case models.ProductDeleted:
			s.deleted[ev.ID] = struct{}{}
			st.Products = remove(st.Products, ev.ID)
		case models.ProductCreated, models.ProductUpdated:
			if ev.Product == nil {
				return
			}
			if i := indexOf(st.Products, ev.ID); i >= 0 {
				st.Products[i] = *ev.Product
			} else {
				st.Products = append(st.Products, *ev.Product)
			}
		}
	})
}

// Watch applique les événements reçus jusqu'à la fermeture du canal.
func (s *Store) Watch(events <-chan models.ProductEvent) {
	for ev := range events {
		s.ApplyEvent(ev)
	}
}

func (s *Store) SetProducts(products []models.Product) {
	s.update(func(st *State) {
		st.Products = append([]models.Product(nil), products...)
	})
}

func (s *Store) SetSelectedProduct(p *models.Product) {
	s.update(func(st *State) {
		if p == nil {
			st.Selected = nil
			return
		}
		sel := *p
		st.Selected = &sel
	})
}

func (s *Store) SetOpenProductDialog(open bool) {
	s.update(func(st *State) { st.ProductDialogOpen = open })
}

func (s *Store) SetOpenDeleteDialog(open bool) {
	s.update(func(st *State) { st.DeleteDialogOpen = open })
}

func (s *Store) issue(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[id]++
	return s.seq[id]
}

// current doit être appelé sous verrou.
func (s *Store) current(id string, ticket uint64) bool {
	if _, gone := s.deleted[id]; gone {
		return false
	}
	return s.seq[id] == ticket
}

func indexOf(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func remove(products []models.Product, id string) []models.Product {
	out := products[:0:0]
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
