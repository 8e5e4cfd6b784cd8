package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gorm.io/gorm"

	"coursedesk/internal/config"
	"coursedesk/internal/database"
	"coursedesk/internal/domain"
	"coursedesk/internal/modules/auth"
	"coursedesk/internal/modules/booking"
	"coursedesk/internal/modules/ledger"
	"coursedesk/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.IsProdLike() {
		slog.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connection failed", "error", err)
		os.Exit(1)
	}

	slog.Info("running migrations")
	if err := database.Migrate(db); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}

	if err := seed(context.Background(), db, cfg.DefaultVATRate); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed completed")
}

func seed(ctx context.Context, db *gorm.DB, defaultVAT float64) error {
	// Cleanup old data in dependency order
	slog.Info("cleaning old data")
	for _, table := range []string{"payments", "bookings", "materials", "course_dates", "courses", "partners", "leads", "support_tickets", "page_permissions", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	if err := database.SeedPagePermissions(db); err != nil {
		return err
	}

	// ================== USERS ==================
	newUser := func(email, password, name string, role domain.UserRole) (*domain.User, error) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u := &domain.User{Email: email, PasswordHash: hash, Name: name, Role: role}
		return u, db.Create(u).Error
	}

	if _, err := newUser("admin@coursedesk.de", "admin1234", "Verwaltung", domain.RoleAdmin); err != nil {
		return err
	}
	slog.Info("admin created", "email", "admin@coursedesk.de", "password", "admin1234")

	teacher, err := newUser("weber@coursedesk.de", "teacher123", "Katrin Weber", domain.RoleTeacher)
	if err != nil {
		return err
	}

	students := make([]*domain.User, 0, 4)
	for i, name := range []string{"Aylin Demir", "Tomasz Nowak", "Sofia Rossi", "Daniel Okafor"} {
		s, err := newUser(fmt.Sprintf("student%d@example.com", i+1), "student123", name, domain.RoleStudent)
		if err != nil {
			return err
		}
		students = append(students, s)
	}
	slog.Info("users created", "students", len(students))

	// ================== CATALOG ==================
	type courseSeed struct {
		title    string
		price    float64
		duration string
	}
	courses := make([]domain.Course, 0, 3)
	for _, cs := range []courseSeed{
		{"Deutsch A1 Intensiv", 480, "4 Wochen"},
		{"Deutsch B1 Abendkurs", 650, "10 Wochen"},
		{"Telc B2 Prüfungsvorbereitung", 390, "5 Tage"},
	} {
		price := cs.price
		c := domain.Course{Title: cs.title, Price: &price, VATRate: 19, Duration: cs.duration, TeacherID: &teacher.ID, Active: true}
		if err := db.Create(&c).Error; err != nil {
			return err
		}
		courses = append(courses, c)
	}

	start := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	dates := make([]domain.CourseDate, 0, len(courses)*2)
	for i, c := range courses {
		for j := 0; j < 2; j++ {
			from := start.AddDate(0, j*2, i*7)
			until := from.AddDate(0, 0, 27)
			d := domain.CourseDate{CourseID: c.ID, StartDate: from, EndDate: &until, Location: "Raum 2.04", Seats: 12}
			if err := db.Create(&d).Error; err != nil {
				return err
			}
			dates = append(dates, d)
		}
	}

	partner := domain.Partner{Name: "Sprachschule Nord", ContactName: "J. Hansen", Email: "info@nord.example", CommissionRate: 10}
	if err := db.Create(&partner).Error; err != nil {
		return err
	}

	for _, c := range courses {
		m := domain.Material{CourseID: c.ID, Title: "Kursplan", URL: "https://files.example/" + fmt.Sprint(c.ID) + "/kursplan.pdf", Kind: domain.MaterialPDF, VisibleToStudents: true}
		if err := db.Create(&m).Error; err != nil {
			return err
		}
	}

	// ================== BOOKINGS ==================
	ledgerService := ledger.NewService(db, nil, slog.Default())
	bookingService := booking.NewService(
		repository.NewBookingRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		repository.NewPartnerRepository(db),
		ledgerService,
		defaultVAT,
		slog.Default(),
	)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	methods := domain.PaymentMethods
	for i, s := range students {
		d := dates[rng.Intn(len(dates))]
		req := booking.CreateBookingRequest{StudentID: s.ID, CourseDateID: &d.ID}
		if i%2 == 1 {
			req.PartnerID = &partner.ID
		}
		b, err := bookingService.CreateBooking(ctx, req)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		// 0: nothing paid, 1: deposit, 2: paid in full, 3: overpaid
		var amounts []float64
		switch i % 4 {
		case 1:
			amounts = []float64{150}
		case 2:
			amounts = []float64{200, *b.Amount - 200}
		case 3:
			amounts = []float64{*b.Amount + 20}
		}
		for k, a := range amounts {
			p := &domain.Payment{
				BookingID:   b.ID,
				PaymentDate: time.Now().AddDate(0, 0, -10+k*5),
				Amount:      a,
				Method:      methods[rng.Intn(len(methods))],
			}
			if _, err := ledgerService.RecordPayment(ctx, p); err != nil {
				return fmt.Errorf("record payment: %w", err)
			}
		}
	}
	slog.Info("bookings created", "count", len(students))

	// ================== LEADS & SUPPORT ==================
	leads := []domain.Lead{
		{Name: "Mehmet Yilmaz", Email: "mehmet@example.com", Source: "website", Status: domain.LeadNew, CourseID: &courses[1].ID},
		{Name: "Ana Costa", Email: "ana@example.com", Source: "partner", Status: domain.LeadContacted, FollowUpCount: 1},
	}
	if err := db.Create(&leads).Error; err != nil {
		return err
	}

	ticket := domain.SupportTicket{Reference: "T-SEED0001", UserID: students[0].ID, Subject: "Rechnung", Body: "Bitte Rechnung an meine Firma senden.", Status: domain.TicketOpen}
	return db.Create(&ticket).Error
}
