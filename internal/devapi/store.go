package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"parkdesk.app/internal/ids"
	"parkdesk.app/internal/services"
)

var errNotFound = errors.New("not found")

// userRecord is a stored user plus the password hash that never leaves the
// server.
type userRecord struct {
	services.User
	PasswordHash []byte
}

// Store is the in-memory document store backing the development server. All
// access goes through the mutex; methods return copies so callers never hold
// references into the maps.
type Store struct {
	mu         sync.Mutex
	users      map[string]*userRecord
	businesses map[string]*services.Business
	vehicles   map[string]*services.Vehicle
	logs       map[string]*services.VehicleLog
	catalogs   map[string]map[string]*services.CatalogEntry
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*userRecord),
		businesses: make(map[string]*services.Business),
		vehicles:   make(map[string]*services.Vehicle),
		logs:       make(map[string]*services.VehicleLog),
		catalogs: map[string]map[string]*services.CatalogEntry{
			"body-parts": {},
			"muscles":    {},
		},
	}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// --- users ---

func (s *Store) CreateUser(u services.User, passwordHash []byte) services.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = ids.New()
	u.CreatedAt = nowStamp()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = &userRecord{User: u, PasswordHash: passwordHash}
	return u
}

func (s *Store) UserByID(id string) (services.User, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return services.User{}, nil, errNotFound
	}
	return rec.User, rec.PasswordHash, nil
}

// UserByLogin matches the sign-in identifier against username or email.
func (s *Store) UserByLogin(login string) (services.User, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	login = strings.ToLower(strings.TrimSpace(login))
	for _, rec := range s.users {
		if strings.ToLower(rec.User.User) == login || strings.ToLower(rec.Email) == login {
			return rec.User, rec.PasswordHash, nil
		}
	}
	return services.User{}, nil, errNotFound
}

func (s *Store) Users() []services.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]services.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.User)
	}
	sortByID(out, func(u services.User) string { return u.ID })
	return out
}

func (s *Store) UsersByBusiness(businessID string) []services.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []services.User
	for _, rec := range s.users {
		if rec.Business == businessID {
			out = append(out, rec.User)
		}
	}
	sortByID(out, func(u services.User) string { return u.ID })
	return out
}

// UpdateUser applies fn to the stored record and returns the result.
func (s *Store) UpdateUser(id string, fn func(*userRecord)) (services.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return services.User{}, errNotFound
	}
	fn(rec)
	rec.UpdatedAt = nowStamp()
	return rec.User, nil
}

func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errNotFound
	}
	delete(s.users, id)
	return nil
}

// --- businesses ---

func (s *Store) CreateBusiness(b services.Business) services.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = ids.New()
	b.CreatedAt = nowStamp()
	b.UpdatedAt = b.CreatedAt
	rec := b
	s.businesses[b.ID] = &rec
	return b
}

func (s *Store) BusinessByID(id string) (services.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.businesses[id]
	if !ok {
		return services.Business{}, errNotFound
	}
	return cloneBusiness(b), nil
}

func (s *Store) Businesses() []services.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]services.Business, 0, len(s.businesses))
	for _, b := range s.businesses {
		out = append(out, cloneBusiness(b))
	}
	sortByID(out, func(b services.Business) string { return b.ID })
	return out
}

// BusinessesForUser lists businesses the user owns or is attached to.
func (s *Store) BusinessesForUser(userID string) []services.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []services.Business
	for _, b := range s.businesses {
		if b.UserID == userID || containsString(b.Users, userID) {
			out = append(out, cloneBusiness(b))
		}
	}
	sortByID(out, func(b services.Business) string { return b.ID })
	return out
}

func (s *Store) UpdateBusiness(id string, fn func(*services.Business)) (services.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.businesses[id]
	if !ok {
		return services.Business{}, errNotFound
	}
	fn(b)
	b.UpdatedAt = nowStamp()
	return cloneBusiness(b), nil
}

func (s *Store) DeleteBusiness(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[id]; !ok {
		return errNotFound
	}
	delete(s.businesses, id)
	return nil
}

// --- vehicles ---

func (s *Store) CreateVehicle(v services.Vehicle) services.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = ids.New()
	v.CreatedAt = nowStamp()
	v.UpdatedAt = v.CreatedAt
	rec := v
	s.vehicles[v.ID] = &rec
	return v
}

func (s *Store) VehicleByID(id string) (services.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return services.Vehicle{}, errNotFound
	}
	return *v, nil
}

func (s *Store) VehicleByPlate(plate string) (services.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicleByPlateLocked(plate)
	if !ok {
		return services.Vehicle{}, errNotFound
	}
	return *v, nil
}

func (s *Store) vehicleByPlateLocked(plate string) (*services.Vehicle, bool) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	for _, v := range s.vehicles {
		if strings.ToUpper(v.Plate) == plate {
			return v, true
		}
	}
	return nil, false
}

func (s *Store) Vehicles() []services.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]services.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, *v)
	}
	sortByID(out, func(v services.Vehicle) string { return v.ID })
	return out
}

func (s *Store) UpdateVehicle(id string, fn func(*services.Vehicle)) (services.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return services.Vehicle{}, errNotFound
	}
	fn(v)
	v.UpdatedAt = nowStamp()
	return *v, nil
}

func (s *Store) DeleteVehicle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return errNotFound
	}
	delete(s.vehicles, id)
	return nil
}

// --- vehicle logs ---

// OpenLog registers an entry for the plate, creating the vehicle on first
// sight and marking it in the lot.
func (s *Store) OpenLog(plate string, vtype services.VehicleType, businessID string) (services.VehicleLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicleByPlateLocked(plate)
	if !ok {
		nv := services.Vehicle{
			ID:         ids.New(),
			Plate:      strings.ToUpper(strings.TrimSpace(plate)),
			Type:       vtype,
			BusinessID: businessID,
			CreatedAt:  nowStamp(),
			UpdatedAt:  nowStamp(),
		}
		s.vehicles[nv.ID] = &nv
		v = &nv
	}
	if v.InParking {
		return services.VehicleLog{}, errors.New("vehicle already in parking")
	}

	log := services.VehicleLog{
		ID:          ids.New(),
		VehicleID:   v.ID,
		BusinessID:  businessID,
		EntryTime:   nowStamp(),
		VehicleType: v.Type,
		Plate:       v.Plate,
		CreatedAt:   nowStamp(),
		UpdatedAt:   nowStamp(),
	}
	rec := log
	s.logs[log.ID] = &rec

	v.InParking = true
	v.LastLog = log.ID
	v.UpdatedAt = nowStamp()
	return log, nil
}

// CloseLog stamps the exit on an open log and frees the vehicle.
func (s *Store) CloseLog(id string, cost float64) (services.VehicleLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[id]
	if !ok {
		return services.VehicleLog{}, errNotFound
	}
	if log.ExitTime != nil {
		return services.VehicleLog{}, errors.New("log already closed")
	}

	exit := nowStamp()
	log.ExitTime = &exit
	log.Cost = cost
	if entry, err := time.Parse(time.RFC3339, log.EntryTime); err == nil {
		log.Duration = time.Since(entry).Hours()
	}
	log.UpdatedAt = exit

	if v, ok := s.vehicles[log.VehicleID]; ok {
		v.InParking = false
		v.UpdatedAt = exit
	}
	return cloneLog(log), nil
}

func (s *Store) Logs() []services.VehicleLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]services.VehicleLog, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, cloneLog(l))
	}
	sortByID(out, func(l services.VehicleLog) string { return l.ID })
	return out
}

func (s *Store) ActiveLogs() []services.VehicleLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []services.VehicleLog
	for _, l := range s.logs {
		if l.ExitTime == nil {
			out = append(out, cloneLog(l))
		}
	}
	sortByID(out, func(l services.VehicleLog) string { return l.ID })
	return out
}

func (s *Store) LogsByPlate(plate string) []services.VehicleLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	plate = strings.ToUpper(strings.TrimSpace(plate))
	var out []services.VehicleLog
	for _, l := range s.logs {
		if strings.ToUpper(l.Plate) == plate {
			out = append(out, cloneLog(l))
		}
	}
	sortByID(out, func(l services.VehicleLog) string { return l.ID })
	return out
}

// LastLogByPlate returns the most recent log for the plate. ULIDs sort by
// creation time so the max ID is the latest entry.
func (s *Store) LastLogByPlate(plate string) (services.VehicleLog, error) {
	logs := s.LogsByPlate(plate)
	if len(logs) == 0 {
		return services.VehicleLog{}, errNotFound
	}
	return logs[len(logs)-1], nil
}

// FilterLogs lists closed logs for a business between two RFC 3339 dates.
func (s *Store) FilterLogs(businessID, dateStart, dateEnd string) []services.VehicleLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []services.VehicleLog
	for _, l := range s.logs {
		if l.ExitTime == nil || l.BusinessID != businessID {
			continue
		}
		if dateStart != "" && l.EntryTime < dateStart {
			continue
		}
		if dateEnd != "" && l.EntryTime > dateEnd {
			continue
		}
		out = append(out, cloneLog(l))
	}
	sortByID(out, func(l services.VehicleLog) string { return l.ID })
	return out
}

// --- catalogs ---

func (s *Store) CreateCatalogEntry(root string, e services.CatalogEntry) (services.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.catalogs[root]
	if !ok {
		return services.CatalogEntry{}, errNotFound
	}
	e.ID = ids.New()
	e.CreatedAt = nowStamp()
	e.UpdatedAt = e.CreatedAt
	rec := e
	entries[e.ID] = &rec
	return e, nil
}

func (s *Store) CatalogEntries(root string, active *bool, name string) []services.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.ToLower(strings.TrimSpace(name))
	var out []services.CatalogEntry
	for _, e := range s.catalogs[root] {
		if active != nil && e.IsActive != *active {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(e.Name), name) &&
			!strings.Contains(strings.ToLower(e.NameEnglish), name) {
			continue
		}
		out = append(out, *e)
	}
	sortByID(out, func(e services.CatalogEntry) string { return e.ID })
	return out
}

func (s *Store) UpdateCatalogEntry(root, id string, fn func(*services.CatalogEntry)) (services.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.catalogs[root][id]
	if !ok {
		return services.CatalogEntry{}, errNotFound
	}
	fn(e)
	e.UpdatedAt = nowStamp()
	return *e, nil
}

func (s *Store) DeleteCatalogEntry(root, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.catalogs[root][id]; !ok {
		return errNotFound
	}
	delete(s.catalogs[root], id)
	return nil
}

// --- helpers ---

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cloneBusiness(b *services.Business) services.Business {
	out := *b
	out.Users = append([]string(nil), b.Users...)
	return out
}

func cloneLog(l *services.VehicleLog) services.VehicleLog {
	out := *l
	if l.ExitTime != nil {
		exit := *l.ExitTime
		out.ExitTime = &exit
	}
	if l.MembershipID != nil {
		m := *l.MembershipID
		out.MembershipID = &m
	}
	if l.PaymentMethod != nil {
		p := *l.PaymentMethod
		out.PaymentMethod = &p
	}
	return out
}
