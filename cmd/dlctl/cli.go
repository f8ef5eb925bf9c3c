package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"dladmin/internal/backend"
	"dladmin/internal/category"
	"dladmin/internal/eligibility"
	jwttoken "dladmin/internal/jwt_token"
	"dladmin/internal/person"
	"dladmin/internal/printqueue"
	"dladmin/internal/vision"
	id "dladmin/pkg/domain"
)

// App name and usage. Edit them here to prevent breaking tests.
const (
	Name  = "dlctl"
	Usage = "Driver licence administration operator CLI"
)

const dateLayout = "2006-01-02"

var (
	pass = color.New(color.FgGreen, color.Bold)
	fail = color.New(color.FgRed, color.Bold)
	warn = color.New(color.FgYellow)
)

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage

	app.Commands = []cli.Command{
		{
			Name:     "categories",
			Category: "Rules",
			Usage:    "List licence and permit categories with their requirements",
			Action: func(c *cli.Context) error {
				renderCategories(app.Writer)
				return nil
			},
		},
		{
			Name:     "vision",
			Category: "Rules",
			Usage:    "Evaluate vision test results against the driving standard",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "left", Usage: "left eye acuity, e.g. 6/9"},
				cli.StringFlag{Name: "right", Usage: "right eye acuity"},
				cli.Float64Flag{Name: "horizontal", Usage: "binocular horizontal field in degrees"},
				cli.Float64Flag{Name: "left-field", Usage: "left eye field in degrees"},
				cli.Float64Flag{Name: "right-field", Usage: "right eye field in degrees"},
				cli.BoolFlag{Name: "lenses", Usage: "corrective lenses worn during the test"},
			},
			Action: func(c *cli.Context) error {
				res := vision.Evaluate(vision.TestData{
					LeftAcuity:            c.String("left"),
					RightAcuity:           c.String("right"),
					HorizontalField:       c.Float64("horizontal"),
					LeftField:             c.Float64("left-field"),
					RightField:            c.Float64("right-field"),
					CorrectiveLensesInUse: c.Bool("lenses"),
				})
				renderVision(app.Writer, res)
				return nil
			},
		},
		{
			Name:     "eligibility",
			Category: "Rules",
			Usage:    "Resolve category eligibility for a birth date and held categories",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "birth-date", Usage: "applicant birth date (YYYY-MM-DD)"},
				cli.StringFlag{Name: "held", Usage: "comma-separated driving licence categories held"},
				cli.StringFlag{Name: "held-permits", Usage: "comma-separated professional permits held"},
				cli.StringFlag{Name: "kind", Value: string(category.KindLicense), Usage: "driving or professional"},
				cli.StringFlag{Name: "category", Usage: "single category code; all categories when empty"},
				cli.StringFlag{Name: "policy", Value: string(eligibility.PolicyWarnAlreadyHeld), Usage: "already-held policy: warn or block", EnvVar: "DLADMIN_ALREADY_HELD_POLICY"},
			},
			Action: func(c *cli.Context) error {
				birth, err := time.Parse(dateLayout, strings.TrimSpace(c.String("birth-date")))
				if err != nil {
					return fmt.Errorf("birth-date must be YYYY-MM-DD: %w", err)
				}
				kind := category.Kind(strings.ToLower(c.String("kind")))
				if kind != category.KindLicense && kind != category.KindPermit {
					return fmt.Errorf("kind must be %s or %s", category.KindLicense, category.KindPermit)
				}
				in := eligibility.Input{
					Person:   person.Person{BirthDate: birth},
					Existing: heldLicenses(c.String("held"), c.String("held-permits")),
					Now:      time.Now(),
					Policy:   eligibility.ParsePolicy(c.String("policy")),
				}
				var results []eligibility.Result
				if code := c.String("category"); code != "" {
					results = []eligibility.Result{eligibility.ResolveCode(kind, code, in)}
				} else {
					results = eligibility.ResolveAll(kind, in)
				}
				fmt.Fprintf(app.Writer, "Age: %d\n", in.Person.Age(in.Now))
				renderEligibility(app.Writer, results)
				return nil
			},
		},
		{
			Name:     "police-clearance",
			Category: "Rules",
			Usage:    "Check whether selected permits need a police clearance",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "permits", Usage: "comma-separated permits being applied for"},
				cli.StringFlag{Name: "held-permits", Usage: "comma-separated permits already held"},
			},
			Action: func(c *cli.Context) error {
				selected := eligibility.NormalizePermits(splitCodes(c.String("permits")))
				required := eligibility.RequiresPoliceClearance(selected, heldLicenses("", c.String("held-permits")))
				fmt.Fprintf(app.Writer, "Permits: %s\n", strings.Join(selected, ", "))
				if required {
					fail.Fprintln(app.Writer, "Police clearance required")
				} else {
					pass.Fprintln(app.Writer, "Police clearance not required")
				}
				return nil
			},
		},
		{
			Name:     "print-queue",
			Category: "Operations",
			Usage:    "Show the licence card print queue",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "backend-url", Usage: "licensing backend base URL", EnvVar: "DLADMIN_BACKEND_URL"},
				cli.StringFlag{Name: "api-key", Usage: "licensing backend API key", EnvVar: "DLADMIN_BACKEND_API_KEY"},
				cli.StringFlag{Name: "location", Usage: "issuing location id; all locations when empty"},
				cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "backend request timeout"},
			},
			Action: func(c *cli.Context) error {
				var location id.LocationID
				if v := c.String("location"); v != "" {
					parsed, err := id.ParseLocationID(v)
					if err != nil {
						return err
					}
					location = parsed
				}
				client, err := backend.New(backend.Config{
					BaseURL:  c.String("backend-url"),
					APIKey:   c.String("api-key"),
					Timeout:  c.Duration("timeout"),
					RetryMax: 1,
				})
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout")*2)
				defer cancel()
				now := time.Now()
				queue, err := printqueue.NewService(client).Queue(ctx, location, now)
				if err != nil {
					return err
				}
				renderQueue(app.Writer, queue, now)
				return nil
			},
		},
		{
			Name:     "token",
			Category: "Operations",
			Usage:    "Mint an officer access token for local testing",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "signing-key", Usage: "HS256 signing key", EnvVar: "DLADMIN_JWT_SIGNING_KEY"},
				cli.StringFlag{Name: "issuer", Value: "dladmin", EnvVar: "DLADMIN_JWT_ISSUER"},
				cli.StringFlag{Name: "audience", Value: "dladmin-officers", EnvVar: "DLADMIN_JWT_AUDIENCE"},
				cli.StringFlag{Name: "officer", Usage: "officer id (uuid)"},
				cli.StringFlag{Name: "location", Usage: "officer location id (uuid)"},
				cli.DurationFlag{Name: "ttl", Value: 8 * time.Hour},
			},
			Action: func(c *cli.Context) error {
				if c.String("signing-key") == "" {
					return fmt.Errorf("signing-key is required")
				}
				officer, err := id.ParseOfficerID(c.String("officer"))
				if err != nil {
					return err
				}
				var location id.LocationID
				if v := c.String("location"); v != "" {
					if location, err = id.ParseLocationID(v); err != nil {
						return err
					}
				}
				svc := jwttoken.NewJWTService(c.String("signing-key"), c.String("issuer"), c.String("audience"))
				token, err := svc.GenerateAccessToken(officer, location, c.Duration("ttl"))
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Writer, token)
				return nil
			},
		},
	}
	return app
}

func splitCodes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func heldLicenses(licenses, permits string) []person.ExistingLicense {
	var held []person.ExistingLicense
	if codes := splitCodes(licenses); len(codes) > 0 {
		held = append(held, person.ExistingLicense{ID: "cli-license", Kind: category.KindLicense, Categories: codes, Active: true})
	}
	if codes := splitCodes(permits); len(codes) > 0 {
		held = append(held, person.ExistingLicense{ID: "cli-permit", Kind: category.KindPermit, Categories: codes, Active: true})
	}
	return held
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderCategories(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Kind", "Code", "Description", "Min Age", "Prerequisites", "Learner", "Medical", "Police"})
	for _, cats := range [][]category.Category{category.Licenses(), category.Permits()} {
		for _, c := range cats {
			table.Append([]string{
				string(c.Kind),
				c.Code,
				c.Description,
				strconv.Itoa(c.MinimumAge),
				strings.Join(c.Prerequisites, ", "),
				yesNo(c.RequiresLearnerPermit),
				yesNo(c.RequiresMedicalCertificate),
				yesNo(c.RequiresPoliceClearance),
			})
		}
	}
	table.Render()
	fmt.Fprintf(w, "Medical assessment mandatory from age %d\n", category.MedicalAgeThreshold)
}

func renderVision(w io.Writer, res vision.Result) {
	if res.Passes {
		pass.Fprintln(w, "Vision meets standards")
	} else {
		fail.Fprintln(w, "Vision does not meet standards")
	}
	for _, reason := range res.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	fmt.Fprintf(w, "Corrective lenses required: %s\n", yesNo(res.CorrectiveLensesRequired))
	for _, r := range res.Restrictions {
		warn.Fprintf(w, "Restriction: %s\n", r)
	}
}

func renderEligibility(w io.Writer, results []eligibility.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Eligible", "Reasons", "Warnings"})
	table.SetAutoWrapText(false)
	for _, r := range results {
		table.Append([]string{
			r.Category,
			yesNo(r.Eligible),
			strings.Join(r.Reasons, "; "),
			strings.Join(r.Warnings, "; "),
		})
	}
	table.Render()
}

func renderQueue(w io.Writer, q printqueue.Queue, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Job", "Person", "Category", "Status", "Queued", "Error"})
	for _, j := range q.Jobs {
		table.Append([]string{
			j.ID,
			j.PersonName,
			j.Category,
			string(j.Status),
			now.Sub(j.QueuedAt).Round(time.Minute).String() + " ago",
			j.Error,
		})
	}
	table.Render()

	counts := make([]string, 0, len(q.Summary.Counts))
	for _, sc := range q.Summary.Counts {
		counts = append(counts, fmt.Sprintf("%s=%d", sc.Status, sc.Count))
	}
	fmt.Fprintf(w, "Total: %d (%s)\n", q.Summary.Total, strings.Join(counts, ", "))
	if q.Summary.OldestQueuedAt != nil {
		warn.Fprintf(w, "Oldest queued job waiting %s\n", q.Summary.OldestQueuedAge.Round(time.Minute))
	}
}
