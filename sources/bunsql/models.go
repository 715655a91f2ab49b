package exportbun

import (
	"context"
	"time"

	"github.com/goliatone/go-impact-export/export"
	"github.com/uptrace/bun"
)

// Donation is a row of the donations table.
type Donation struct {
	bun.BaseModel `bun:"table:donations"`

	ID            int64     `bun:"id,pk,autoincrement"`
	DonorName     string    `bun:"donor_name"`
	Email         string    `bun:"email"`
	Amount        float64   `bun:"amount"`
	Currency      string    `bun:"currency"`
	Campaign      string    `bun:"campaign"`
	PaymentMethod string    `bun:"payment_method"`
	Status        string    `bun:"status"`
	DonatedAt     time.Time `bun:"donated_at"`
	Notes         string    `bun:"notes"`
}

// Volunteer is a row of the volunteers table.
type Volunteer struct {
	bun.BaseModel `bun:"table:volunteers"`

	ID          int64     `bun:"id,pk,autoincrement"`
	FullName    string    `bun:"full_name"`
	Email       string    `bun:"email"`
	Phone       string    `bun:"phone"`
	Skills      string    `bun:"skills"`
	Location    string    `bun:"location"`
	HoursLogged float64   `bun:"hours_logged"`
	Status      string    `bun:"status"`
	JoinedAt    time.Time `bun:"joined_at"`
}

// Beneficiary is a row of the beneficiaries table.
type Beneficiary struct {
	bun.BaseModel `bun:"table:beneficiaries"`

	ID            int64     `bun:"id,pk,autoincrement"`
	FullName      string    `bun:"full_name"`
	HouseholdSize int       `bun:"household_size"`
	Village       string    `bun:"village"`
	Program       string    `bun:"program"`
	Status        string    `bun:"status"`
	EnrolledAt    time.Time `bun:"enrolled_at"`
	Notes         string    `bun:"notes"`
}

// Project is a row of the projects table.
type Project struct {
	bun.BaseModel `bun:"table:projects"`

	ID                     int64     `bun:"id,pk,autoincrement"`
	ProjectName            string    `bun:"project_name"`
	Description            string    `bun:"description"`
	Location               string    `bun:"location"`
	Budget                 float64   `bun:"budget"`
	AmountRaised           float64   `bun:"amount_raised"`
	EstimatedBeneficiaries int       `bun:"estimated_beneficiaries"`
	Status                 string    `bun:"status"`
	StartDate              time.Time `bun:"start_date"`
}

// BlogPost is a row of the blog_posts table.
type BlogPost struct {
	bun.BaseModel `bun:"table:blog_posts"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Title       string    `bun:"title"`
	Author      string    `bun:"author"`
	Category    string    `bun:"category"`
	Status      string    `bun:"status"`
	Summary     string    `bun:"summary"`
	PublishedAt time.Time `bun:"published_at"`
}

// Models lists the bun models backing DefaultTables.
func Models() []any {
	return []any{
		(*Donation)(nil),
		(*Volunteer)(nil),
		(*Beneficiary)(nil),
		(*Project)(nil),
		(*BlogPost)(nil),
	}
}

// DefaultTables returns the table specs for Models.
func DefaultTables() []TableSpec {
	return []TableSpec{
		{
			Entity:     export.EntityDonations,
			Table:      "donations",
			DateColumn: "donated_at",
			Columns:    []string{"id", "donor_name", "email", "amount", "currency", "campaign", "payment_method", "status", "donated_at", "notes"},
			Descending: true,
		},
		{
			Entity:     export.EntityVolunteers,
			Table:      "volunteers",
			DateColumn: "joined_at",
			Columns:    []string{"id", "full_name", "email", "phone", "skills", "location", "hours_logged", "status", "joined_at"},
		},
		{
			Entity:     export.EntityBeneficiaries,
			Table:      "beneficiaries",
			DateColumn: "enrolled_at",
			Columns:    []string{"id", "full_name", "household_size", "village", "program", "status", "enrolled_at", "notes"},
		},
		{
			Entity:     export.EntityProjects,
			Table:      "projects",
			DateColumn: "start_date",
			Columns:    []string{"id", "project_name", "description", "location", "budget", "amount_raised", "estimated_beneficiaries", "status", "start_date"},
		},
		{
			Entity:     export.EntityBlogPosts,
			Table:      "blog_posts",
			DateColumn: "published_at",
			Columns:    []string{"id", "title", "author", "category", "status", "summary", "published_at"},
			Descending: true,
		},
	}
}

// CreateSchema creates the tables for Models when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
