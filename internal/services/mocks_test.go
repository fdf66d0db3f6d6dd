package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"rapidaid/internal/models"
	"rapidaid/internal/utils"
	"rapidaid/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *logger.Logger {
	l, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	return l
}

// --- patient repository ---

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[primitive.ObjectID]*models.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[primitive.ObjectID]*models.Patient)}
}

func (r *fakePatientRepo) Create(ctx context.Context, patient *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	patient.ID = primitive.NewObjectID()
	patient.CreatedAt = time.Now()
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.patients[id]; ok {
		return p, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakePatientRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.PhoneNumber == phoneNumber {
			return p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakePatientRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return utils.ErrNotFound
	}
	if v, ok := updates["is_verified"]; ok {
		p.IsVerified = v.(bool)
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["age"]; ok {
		p.Age = v.(int)
	}
	return nil
}

func (r *fakePatientRepo) AddMedicalHistory(ctx context.Context, id primitive.ObjectID, entry models.MedicalHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return utils.ErrNotFound
	}
	p.MedicalHistory = append(p.MedicalHistory, entry)
	return nil
}

// --- driver repository ---

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[primitive.ObjectID]*models.AmbulanceDriver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[primitive.ObjectID]*models.AmbulanceDriver)}
}

func (r *fakeDriverRepo) add(driver *models.AmbulanceDriver) *models.AmbulanceDriver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if driver.ID.IsZero() {
		driver.ID = primitive.NewObjectID()
	}
	r.drivers[driver.ID] = driver
	return driver
}

func (r *fakeDriverRepo) Create(ctx context.Context, driver *models.AmbulanceDriver) error {
	r.add(driver)
	driver.CreatedAt = time.Now()
	return nil
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AmbulanceDriver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drivers[id]; ok {
		return d, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeDriverRepo) GetByLicenseNumber(ctx context.Context, licenseNumber string) (*models.AmbulanceDriver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drivers {
		if d.LicenseNumber == licenseNumber {
			return d, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeDriverRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return utils.ErrNotFound
	}
	if v, ok := updates["is_available"]; ok {
		d.IsAvailable = v.(bool)
	}
	if v, ok := updates["push_token"]; ok {
		d.PushToken = v.(string)
	}
	if v, ok := updates["ambulance_image_url"]; ok {
		d.AmbulanceImageURL = v.(string)
	}
	return nil
}

func (r *fakeDriverRepo) UpdateLocation(ctx context.Context, id primitive.ObjectID, location models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return utils.ErrNotFound
	}
	now := time.Now()
	d.CurrentLocation = &location
	d.LastLocationUpdate = &now
	return nil
}

func (r *fakeDriverRepo) ClaimForDispatch(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return utils.ErrNotFound
	}
	if !d.IsAvailable {
		return utils.ErrDriverBusy
	}
	d.IsAvailable = false
	return nil
}

func (r *fakeDriverRepo) Release(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return utils.ErrNotFound
	}
	d.IsAvailable = true
	return nil
}

func (r *fakeDriverRepo) GetAvailable(ctx context.Context, limit int64) ([]*models.AmbulanceDriver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AmbulanceDriver
	for _, d := range r.drivers {
		if d.IsAvailable {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- hospital repository ---

type fakeHospitalRepo struct {
	mu        sync.Mutex
	hospitals map[primitive.ObjectID]*models.Hospital
}

func newFakeHospitalRepo() *fakeHospitalRepo {
	return &fakeHospitalRepo{hospitals: make(map[primitive.ObjectID]*models.Hospital)}
}

func (r *fakeHospitalRepo) add(h *models.Hospital) *models.Hospital {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	r.hospitals[h.ID] = h
	return h
}

func (r *fakeHospitalRepo) Create(ctx context.Context, hospital *models.Hospital) error {
	r.add(hospital)
	hospital.CreatedAt = time.Now()
	return nil
}

func (r *fakeHospitalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hospitals[id]; ok {
		return h, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeHospitalRepo) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hospitals {
		if h.RegistrationNumber == registrationNumber {
			return h, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeHospitalRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hospitals[id]
	if !ok {
		return utils.ErrNotFound
	}
	if v, ok := updates["push_token"]; ok {
		h.PushToken = v.(string)
	}
	return nil
}

func (r *fakeHospitalRepo) List(ctx context.Context) ([]*models.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Hospital, 0, len(r.hospitals))
	for _, h := range r.hospitals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *fakeHospitalRepo) UpsertService(ctx context.Context, id primitive.ObjectID, service models.HospitalService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hospitals[id]
	if !ok {
		return utils.ErrNotFound
	}
	for i := range h.Services {
		if h.Services[i].Name == service.Name {
			h.Services[i].IsAvailable = service.IsAvailable
			return nil
		}
	}
	h.Services = append(h.Services, service)
	return nil
}

// --- emergency request repository ---

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.EmergencyRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[primitive.ObjectID]*models.EmergencyRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *models.EmergencyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = primitive.NewObjectID()
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeRequestRepo) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.RequestStatus, extra map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return utils.ErrConcurrentModification
	}
	req.Status = to
	req.UpdatedAt = time.Now()
	for k, v := range extra {
		switch k {
		case "accepted_at":
			t := v.(time.Time)
			req.AcceptedAt = &t
		case "completed_at":
			t := v.(time.Time)
			req.CompletedAt = &t
		case "canceled_at":
			t := v.(time.Time)
			req.CanceledAt = &t
		case "canceled_by":
			req.CanceledBy = v.(string)
		case "hospital_id":
			hid := v.(primitive.ObjectID)
			req.HospitalID = &hid
		}
	}
	return nil
}

func (r *fakeRequestRepo) ListPendingAmbulance(ctx context.Context, limit int64) ([]*models.EmergencyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.EmergencyRequest
	for _, req := range r.requests {
		if req.Kind == models.RequestKindAmbulance && req.Status == models.RequestStatusPending {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByPatient(ctx context.Context, patientID primitive.ObjectID, limit int64) ([]*models.EmergencyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.EmergencyRequest
	for _, req := range r.requests {
		if req.PatientID != nil && *req.PatientID == patientID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- assignment repository ---

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*models.Assignment
	failCreate  bool
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[primitive.ObjectID]*models.Assignment)}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return utils.ErrStoreUnavailable
	}
	assignment.ID = primitive.NewObjectID()
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusAssigned
	}
	assignment.AssignedAt = time.Now()
	assignment.CreatedAt = assignment.AssignedAt
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeAssignmentRepo) GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.DriverID == driverID && !a.Status.IsTerminal() {
			copied := *a
			return &copied, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeAssignmentRepo) GetByRequest(ctx context.Context, requestID primitive.ObjectID) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.RequestID == requestID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeAssignmentRepo) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.AssignmentStatus, extra map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok || a.Status != from {
		return utils.ErrConcurrentModification
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	for k, v := range extra {
		switch k {
		case "picked_up_at":
			t := v.(time.Time)
			a.PickedUpAt = &t
		case "hospital_selected_at":
			t := v.(time.Time)
			a.HospitalSelectedAt = &t
		case "arrived_at":
			t := v.(time.Time)
			a.ArrivedAt = &t
		case "completed_at":
			t := v.(time.Time)
			a.CompletedAt = &t
		case "hospital_id":
			hid := v.(primitive.ObjectID)
			a.HospitalID = &hid
		}
	}
	return nil
}

func (r *fakeAssignmentRepo) ListEnRouteByHospital(ctx context.Context, hospitalID primitive.ObjectID) ([]*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Assignment
	for _, a := range r.assignments {
		if a.HospitalID != nil && *a.HospitalID == hospitalID && a.Status == models.AssignmentStatusEnRoute {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].HospitalSelectedAt.After(*out[j].HospitalSelectedAt)
	})
	return out, nil
}

// --- notification repository ---

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	failCreate    bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return utils.ErrStoreUnavailable
	}
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeNotificationRepo) ListForRecipient(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, limit int64) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.RecipientKind == kind && n.RecipientID == recipientID {
			out = append(out, n)
			if limit > 0 && int64(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			now := time.Now()
			n.Read = true
			n.ReadAt = &now
			return nil
		}
	}
	return utils.ErrNotFound
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientKind == kind && n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

// --- OTP repository ---

type fakeOTPRepo struct {
	mu   sync.Mutex
	otps []*models.OTPVerification
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{}
}

func (r *fakeOTPRepo) Create(ctx context.Context, otp *models.OTPVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now()
	r.otps = append(r.otps, otp)
	return nil
}

func (r *fakeOTPRepo) GetActive(ctx context.Context, phoneNumber, code string) (*models.OTPVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.otps) - 1; i >= 0; i-- {
		otp := r.otps[i]
		if otp.PhoneNumber == phoneNumber && otp.Code == code && !otp.IsVerified && !otp.IsExpired() {
			return otp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeOTPRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, otp := range r.otps {
		if otp.ID == id {
			otp.IsVerified = true
			return nil
		}
	}
	return utils.ErrNotFound
}

// --- cache service ---

type fakeCache struct {
	mu       sync.Mutex
	counters map[string]int64
	unread   map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		counters: make(map[string]int64),
		unread:   make(map[string]int64),
	}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error { return utils.ErrNotFound }
func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (c *fakeCache) Delete(ctx context.Context, keys ...string) error      { return nil }
func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error)  { return false, nil }

func (c *fakeCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key] <= limit, nil
}

func (c *fakeCache) SetDriverLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Location, expiration time.Duration) error {
	return nil
}

func (c *fakeCache) GetDriverLocation(ctx context.Context, driverID primitive.ObjectID) (*models.Location, error) {
	return nil, utils.ErrNotFound
}

func (c *fakeCache) GetUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.unread[string(kind)+recipientID.Hex()]
	return count, ok
}

func (c *fakeCache) SetUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unread[string(kind)+recipientID.Hex()] = count
	return nil
}

func (c *fakeCache) InvalidateUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.unread, string(kind)+recipientID.Hex())
	return nil
}

// --- notifier recording stub for dispatch tests ---

type sentNotification struct {
	Kind        models.ActorRole
	RecipientID primitive.ObjectID
	Message     string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, message string, requestID, assignmentID *primitive.ObjectID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Kind: kind, RecipientID: recipientID, Message: message})
	return nil
}

func (n *fakeNotifier) List(ctx context.Context, actor models.Actor, limit int64) ([]*models.Notification, error) {
	return nil, nil
}

func (n *fakeNotifier) MarkRead(ctx context.Context, actor models.Actor, notificationID primitive.ObjectID) error {
	return nil
}

func (n *fakeNotifier) CountUnread(ctx context.Context, actor models.Actor) (int64, error) {
	return 0, nil
}

func (n *fakeNotifier) sentTo(kind models.ActorRole) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// --- realtime publisher recording stub ---

type publishedEvent struct {
	Kind        models.ActorRole
	RecipientID primitive.ObjectID
	Event       string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishToActor(kind models.ActorRole, recipientID primitive.ObjectID, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Kind: kind, RecipientID: recipientID, Event: event})
}
