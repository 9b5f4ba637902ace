package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanStatus is the availability state of a single book copy.
type LoanStatus string

const (
	LoanStatusMaintenance LoanStatus = "m"
	LoanStatusOnLoan      LoanStatus = "o"
	LoanStatusAvailable   LoanStatus = "a"
	LoanStatusReserved    LoanStatus = "r"
)

// DefaultLoanStatus is assigned to copies created without an explicit status.
const DefaultLoanStatus = LoanStatusMaintenance

var loanStatusLabels = map[LoanStatus]string{
	LoanStatusMaintenance: "Maintenance",
	LoanStatusOnLoan:      "On loan",
	LoanStatusAvailable:   "Available",
	LoanStatusReserved:    "Reserved",
}

// LoanStatuses returns every status in display order.
func LoanStatuses() []LoanStatus {
	return []LoanStatus{
		LoanStatusMaintenance,
		LoanStatusOnLoan,
		LoanStatusAvailable,
		LoanStatusReserved,
	}
}

// ParseLoanStatus accepts either the one-letter code or the label (case-insensitive).
func ParseLoanStatus(s string) (LoanStatus, error) {
	s = strings.TrimSpace(s)
	for _, status := range LoanStatuses() {
		if string(status) == s || strings.EqualFold(loanStatusLabels[status], s) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown loan status %q", s)
}

func (s LoanStatus) Valid() bool {
	_, ok := loanStatusLabels[s]
	return ok
}

// Label returns the human readable name of the status.
func (s LoanStatus) Label() string {
	if label, ok := loanStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Genre is a book category such as "Science Fiction".
type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Genre) TableName() string {
	return "genres"
}

func (g Genre) String() string {
	return g.Name
}

// Language is a natural language a book is available in.
type Language struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Language) TableName() string {
	return "languages"
}

func (l Language) String() string {
	return l.Name
}

type Author struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirstName   string    `gorm:"size:100;not null;index:idx_author_name,priority:1" json:"first_name"`
	LastName    string    `gorm:"size:100;not null;index:idx_author_name,priority:2" json:"last_name"`
	DateOfBirth *Date     `json:"date_of_birth,omitempty"`
	DateOfDeath *Date     `json:"date_of_death,omitempty"`
	Books       []Book    `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"books,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Author) TableName() string {
	return "authors"
}

// String renders the author as "First, Last".
func (a Author) String() string {
	return fmt.Sprintf("%s, %s", a.FirstName, a.LastName)
}

// Lifespan renders "born - died" with blanks for unknown dates.
func (a Author) Lifespan() string {
	if a.DateOfBirth == nil && a.DateOfDeath == nil {
		return ""
	}
	var born, died string
	if a.DateOfBirth != nil {
		born = a.DateOfBirth.String()
	}
	if a.DateOfDeath != nil {
		died = a.DateOfDeath.String()
	}
	return strings.TrimSpace(born + " - " + died)
}

// displayLimit caps how many genres/languages a book summary shows.
const displayLimit = 3

type Book struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null;index" json:"title"`
	AuthorID  *uint          `gorm:"index" json:"author_id,omitempty"`
	Author    *Author        `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Summary   string         `gorm:"size:1000" json:"summary"`
	ISBN      string         `gorm:"column:isbn;size:13" json:"isbn"`
	Genres    []Genre        `gorm:"many2many:book_genres;" json:"genres,omitempty"`
	Languages []Language     `gorm:"many2many:book_languages;" json:"languages,omitempty"`
	Instances []BookInstance `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL" json:"instances,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (b Book) String() string {
	return b.Title
}

// DisplayGenres joins the names of the first three genres in association order.
func (b Book) DisplayGenres() string {
	names := make([]string, 0, displayLimit)
	for i := 0; i < len(b.Genres) && i < displayLimit; i++ {
		names = append(names, b.Genres[i].Name)
	}
	return strings.Join(names, ", ")
}

// DisplayLanguages joins the names of the first three languages in association order.
func (b Book) DisplayLanguages() string {
	names := make([]string, 0, displayLimit)
	for i := 0; i < len(b.Languages) && i < displayLimit; i++ {
		names = append(names, b.Languages[i].Name)
	}
	return strings.Join(names, ", ")
}

// AuthorName is the author's string form, or "" when the author was removed.
func (b Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.String()
}

// BookInstance is one loanable physical copy of a Book.
type BookInstance struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookID     *uint      `gorm:"index" json:"book_id,omitempty"`
	Book       *Book      `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL" json:"book,omitempty"`
	Imprint    string     `gorm:"size:200;not null" json:"imprint"`
	DueBack    *Date      `gorm:"index" json:"due_back,omitempty"`
	BorrowerID *uint      `gorm:"index" json:"borrower_id,omitempty"`
	Borrower   *User      `gorm:"foreignKey:BorrowerID;constraint:OnDelete:SET NULL" json:"borrower,omitempty"`
	Status     LoanStatus `gorm:"size:1;not null;default:'m';index" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (BookInstance) TableName() string {
	return "book_instances"
}

// BeforeCreate assigns a fresh UUID and the default status.
func (bi *BookInstance) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	if bi.Status == "" {
		bi.Status = DefaultLoanStatus
	}
	return nil
}

// String renders "<id> (<book title>)".
func (bi BookInstance) String() string {
	if bi.Book == nil {
		return fmt.Sprintf("%s (unknown book)", bi.ID)
	}
	return fmt.Sprintf("%s (%s)", bi.ID, bi.Book.Title)
}

// IsOverdue reports whether the due date is set and strictly before today.
func (bi BookInstance) IsOverdue(today Date) bool {
	return bi.DueBack != nil && bi.DueBack.Before(today)
}

// Overdue is IsOverdue against the current local date, for templates.
func (bi BookInstance) Overdue() bool {
	return bi.IsOverdue(Today())
}
