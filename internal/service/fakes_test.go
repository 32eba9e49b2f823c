package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"panaderia/internal/infra"
	"panaderia/internal/model"
	"panaderia/internal/repository"

	"gorm.io/gorm"
)

// ── In-memory MetricasRepository stub ────────────────────────────────────────

type stubMetricasRepo struct {
	movimientos  []model.Movimiento
	productos    []model.Producto
	sedes        []model.Sede
	temperaturas []model.Temperatura // newest first
	humedades    []model.Humedad     // newest first
	err          error
}

var _ repository.MetricasRepository = (*stubMetricasRepo)(nil)

func (r *stubMetricasRepo) ListMovimientos(_ context.Context, f repository.MovimientoFilter) ([]model.Movimiento, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.Movimiento, 0)
	for _, m := range r.movimientos {
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.SedeID != nil && m.SedeID != *f.SedeID {
			continue
		}
		if f.Desde != nil && m.Fecha.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && m.Fecha.After(*f.Hasta) {
			continue
		}
		out = append(out, m)
	}
	if f.Recientes {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *stubMetricasRepo) ListProductos(_ context.Context) ([]model.Producto, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.productos, nil
}

func (r *stubMetricasRepo) ListProductosStockBajo(_ context.Context, umbral float64) ([]model.Producto, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Producto
	for _, p := range r.productos {
		if p.Stock < umbral {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubMetricasRepo) FindProductoByID(_ context.Context, id uint) (*model.Producto, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.productos {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMetricasRepo) ListSedes(_ context.Context) ([]model.Sede, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sedes, nil
}

func (r *stubMetricasRepo) UltimasTemperaturas(_ context.Context, n int) ([]model.Temperatura, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.temperaturas) > n {
		return r.temperaturas[:n], nil
	}
	return r.temperaturas, nil
}

func (r *stubMetricasRepo) UltimasHumedades(_ context.Context, n int) ([]model.Humedad, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.humedades) > n {
		return r.humedades[:n], nil
	}
	return r.humedades, nil
}

// ── In-memory ChatRepository stub ────────────────────────────────────────────

type stubChatRepo struct {
	mu       sync.Mutex
	sesiones map[uint]*model.ChatSession
	queries  []model.VoiceQuery
	nextID   uint

	errCreateVoiceQuery error
	errRegistrar        error
	errCreateSesion     error
}

var _ repository.ChatRepository = (*stubChatRepo)(nil)

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{sesiones: make(map[uint]*model.ChatSession)}
}

func (r *stubChatRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *stubChatRepo) CreateSesion(_ context.Context, s *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errCreateSesion != nil {
		return r.errCreateSesion
	}
	s.ID = r.id()
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *stubChatRepo) FindSesionActiva(_ context.Context, id, usuarioID uint) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[id]
	if !ok || s.UsuarioID != usuarioID || !s.SessionActive {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubChatRepo) FindSesion(_ context.Context, id, usuarioID uint) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[id]
	if !ok || s.UsuarioID != usuarioID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubChatRepo) CerrarSesion(_ context.Context, id, usuarioID uint, fin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[id]
	if !ok || s.UsuarioID != usuarioID || !s.SessionActive {
		return gorm.ErrRecordNotFound
	}
	s.SessionActive = false
	s.SessionEnd = &fin
	return nil
}

func (r *stubChatRepo) ListSesiones(_ context.Context, usuarioID uint, soloActivas bool, limit int) ([]model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ChatSession
	for _, s := range r.sesiones {
		if s.UsuarioID != usuarioID || (soloActivas && !s.SessionActive) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubChatRepo) RegistrarConsulta(_ context.Context, q *model.VoiceQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errRegistrar != nil {
		return r.errRegistrar
	}
	s, ok := r.sesiones[q.ChatSessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	q.ID = r.id()
	r.queries = append(r.queries, *q)
	s.TotalQueries++
	return nil
}

func (r *stubChatRepo) IncrementarConsultas(_ context.Context, sesionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[sesionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.TotalQueries++
	return nil
}

func (r *stubChatRepo) CreateVoiceQuery(_ context.Context, q *model.VoiceQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errCreateVoiceQuery != nil {
		return r.errCreateVoiceQuery
	}
	q.ID = r.id()
	r.queries = append(r.queries, *q)
	return nil
}

func (r *stubChatRepo) ListVoiceQueries(_ context.Context, sesionID uint, limit int) ([]model.VoiceQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.VoiceQuery
	for i := len(r.queries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.queries[i].ChatSessionID == sesionID {
			out = append(out, r.queries[i])
		}
	}
	return out, nil
}

func (r *stubChatRepo) sesion(id uint) model.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.sesiones[id]
}

func (r *stubChatRepo) consultas() []model.VoiceQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.VoiceQuery(nil), r.queries...)
}

// ── In-memory UsuarioRepository stub ─────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[uint]*model.Usuario
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func newStubUsuarioRepo(users ...*model.Usuario) *stubUsuarioRepo {
	r := &stubUsuarioRepo{users: make(map[uint]*model.Usuario)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uint(len(r.users) + 1)
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

// ── Fake AI gateway and clock ────────────────────────────────────────────────

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeGateway struct {
	mu          sync.Mutex
	transcribir func(ctx context.Context, a infra.Audio) (string, error)
	completar   func(ctx context.Context, c infra.Completion) (string, error)

	llamadasSTT int
	llamadasLLM int
	ultima      infra.Completion
}

var _ infra.AIGateway = (*fakeGateway)(nil)

func (g *fakeGateway) Transcribir(ctx context.Context, a infra.Audio) (string, error) {
	g.mu.Lock()
	g.llamadasSTT++
	fn := g.transcribir
	g.mu.Unlock()
	if fn == nil {
		return "", errors.New("transcribir no configurado")
	}
	return fn(ctx, a)
}

func (g *fakeGateway) Completar(ctx context.Context, c infra.Completion) (string, error) {
	g.mu.Lock()
	g.llamadasLLM++
	g.ultima = c
	fn := g.completar
	g.mu.Unlock()
	if fn == nil {
		return "respuesta de prueba", nil
	}
	return fn(ctx, c)
}

func (g *fakeGateway) llamadas() (stt, llm int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.llamadasSTT, g.llamadasLLM
}

func (g *fakeGateway) ultimaCompletion() infra.Completion {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ultima
}
