package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/entities"
	"github.com/mrlokans/locallibrary/internal/entrypoint"
)

type sampleCopy struct {
	Imprint string
	Status  entities.LoanStatus
}

type sampleBook struct {
	Title     string
	Summary   string
	ISBN      string
	Genres    []string
	Languages []string
	Copies    []sampleCopy
}

type sampleAuthor struct {
	FirstName string
	LastName  string
	Born      *entities.Date
	Died      *entities.Date
	Books     []sampleBook
}

func date(year int, month time.Month, day int) *entities.Date {
	d := entities.NewDate(year, month, day)
	return &d
}

var sampleCatalog = []sampleAuthor{
	{
		FirstName: "Mary", LastName: "Shelley",
		Born: date(1797, 8, 30), Died: date(1851, 2, 1),
		Books: []sampleBook{{
			Title:     "Frankenstein",
			Summary:   "A young scientist creates a living being and abandons it.",
			ISBN:      "9780486282114",
			Genres:    []string{"Fiction", "Science Fiction"},
			Languages: []string{"English"},
			Copies: []sampleCopy{
				{"Dover Thrift, 1994", entities.LoanStatusAvailable},
				{"Penguin Classics, 2003", entities.LoanStatusAvailable},
				{"Penguin Classics, 2003", entities.LoanStatusMaintenance},
			},
		}},
	},
	{
		FirstName: "Ursula", LastName: "Le Guin",
		Born: date(1929, 10, 21), Died: date(2018, 1, 22),
		Books: []sampleBook{
			{
				Title:     "A Wizard of Earthsea",
				Summary:   "A gifted boy grows into a wizard and must face the shadow he released.",
				ISBN:      "9780547773742",
				Genres:    []string{"Fantasy"},
				Languages: []string{"English"},
				Copies: []sampleCopy{
					{"Houghton Mifflin, 2012", entities.LoanStatusAvailable},
					{"Houghton Mifflin, 2012", entities.LoanStatusReserved},
				},
			},
			{
				Title:     "The Dispossessed",
				Summary:   "A physicist travels between an anarchist moon and its capitalist planet.",
				ISBN:      "9780061054884",
				Genres:    []string{"Fiction", "Science Fiction"},
				Languages: []string{"English"},
				Copies: []sampleCopy{
					{"Harper Voyager, 1994", entities.LoanStatusAvailable},
				},
			},
		},
	},
	{
		FirstName: "Victor", LastName: "Hugo",
		Born: date(1802, 2, 26), Died: date(1885, 5, 22),
		Books: []sampleBook{{
			Title:     "Les Misérables",
			Summary:   "An ex-convict seeks redemption in nineteenth-century France.",
			ISBN:      "9782253096337",
			Genres:    []string{"Fiction"},
			Languages: []string{"French", "English"},
			Copies: []sampleCopy{
				{"Le Livre de Poche, 1998", entities.LoanStatusAvailable},
				{"Signet Classics, 2013", entities.LoanStatusAvailable},
			},
		}},
	},
	{
		FirstName: "Rainer Maria", LastName: "Rilke",
		Born: date(1875, 12, 4), Died: date(1926, 12, 29),
		Books: []sampleBook{{
			Title:     "Duineser Elegien",
			Summary:   "Ten elegies on love, death and the limits of being human.",
			Genres:    []string{"Poetry"},
			Languages: []string{"German"},
			Copies: []sampleCopy{
				{"Insel Verlag, 1923", entities.LoanStatusMaintenance},
			},
		}},
	},
}

// SeedCommand loads a small sample catalog into an empty database.
type SeedCommand struct {
	DatabasePath string
	Borrower     string
	Force        bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite catalog (defaults to DATABASE_PATH)")
	fs.StringVar(&cmd.Borrower, "borrower", "", "Existing username to lend one copy of every book to")
	fs.BoolVar(&cmd.Force, "force", false, "Seed even if the catalog already has books")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load sample authors, books and copies.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username pat -email pat@example.com -password correct-horse-battery\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -borrower pat\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	return withApp(cmd.DatabasePath, cmd.run)
}

// SeedResult counts what a seed run created.
type SeedResult struct {
	Authors int
	Books   int
	Copies  int
	Loans   int
}

func (cmd *SeedCommand) run(ctx context.Context, app *entrypoint.App) error {
	result, err := cmd.seed(ctx, app)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	fmt.Printf("Seeded %d authors, %d books, %d copies, %d loans\n",
		result.Authors, result.Books, result.Copies, result.Loans)
	return nil
}

// seed returns nil without error when the catalog is not empty and Force is
// unset.
func (cmd *SeedCommand) seed(ctx context.Context, app *entrypoint.App) (*SeedResult, error) {
	if !cmd.Force {
		existing, err := app.Books.Count(ctx)
		if err != nil {
			return nil, err
		}
		if existing > 0 {
			fmt.Printf("Catalog already has %d books, skipping (use -force to seed anyway)\n", existing)
			return nil, nil
		}
	}

	var borrower *entities.User
	if cmd.Borrower != "" {
		user, err := app.Auth.GetUserByUsername(ctx, cmd.Borrower)
		if err != nil {
			return nil, fmt.Errorf("borrower %q: %w", cmd.Borrower, err)
		}
		borrower = user
	}

	// Seeding acts with full staff rights so loans go through the lifecycle.
	actor := auth.LocalLibrarian
	result := &SeedResult{}

	for _, sa := range sampleCatalog {
		author := &entities.Author{
			FirstName:   sa.FirstName,
			LastName:    sa.LastName,
			DateOfBirth: sa.Born,
			DateOfDeath: sa.Died,
		}
		if err := app.Authors.Create(ctx, author); err != nil {
			return nil, fmt.Errorf("create author %s: %w", author, err)
		}
		result.Authors++

		for _, sb := range sa.Books {
			book := &entities.Book{
				Title:    sb.Title,
				AuthorID: &author.ID,
				Summary:  sb.Summary,
				ISBN:     sb.ISBN,
			}
			for _, name := range sb.Genres {
				genre, err := ensureGenre(ctx, app, name)
				if err != nil {
					return nil, fmt.Errorf("genre %q: %w", name, err)
				}
				book.Genres = append(book.Genres, *genre)
			}
			for _, name := range sb.Languages {
				language, err := ensureLanguage(ctx, app, name)
				if err != nil {
					return nil, fmt.Errorf("language %q: %w", name, err)
				}
				book.Languages = append(book.Languages, *language)
			}
			if err := app.Books.Create(ctx, book); err != nil {
				return nil, fmt.Errorf("create book %q: %w", book.Title, err)
			}
			result.Books++

			lent := false
			for _, sc := range sb.Copies {
				instance := &entities.BookInstance{BookID: &book.ID, Imprint: sc.Imprint, Status: sc.Status}
				if err := app.Instances.Create(ctx, instance); err != nil {
					return nil, fmt.Errorf("create copy of %q: %w", book.Title, err)
				}
				result.Copies++

				if borrower != nil && !lent && sc.Status == entities.LoanStatusAvailable {
					if _, err := app.Lifecycle.Lend(ctx, &actor, instance.ID, borrower.ID, nil); err != nil {
						return nil, fmt.Errorf("lend copy of %q: %w", book.Title, err)
					}
					lent = true
					result.Loans++
				}
			}
		}
	}

	return result, nil
}

// ensureGenre finds a genre by name, creating it when an operator has
// removed it from the default set.
func ensureGenre(ctx context.Context, app *entrypoint.App, name string) (*entities.Genre, error) {
	genre, err := app.Taxonomy.GenreByName(ctx, name)
	if !errors.Is(err, entities.ErrNotFound) {
		return genre, err
	}
	genre = &entities.Genre{Name: name}
	if err := app.Taxonomy.CreateGenre(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func ensureLanguage(ctx context.Context, app *entrypoint.App, name string) (*entities.Language, error) {
	language, err := app.Taxonomy.LanguageByName(ctx, name)
	if !errors.Is(err, entities.ErrNotFound) {
		return language, err
	}
	language = &entities.Language{Name: name}
	if err := app.Taxonomy.CreateLanguage(ctx, language); err != nil {
		return nil, err
	}
	return language, nil
}
