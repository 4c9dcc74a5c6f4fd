package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/cli/config"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/repository/firestore"
	"github.com/slotline-io/slotline/pkg/usecase"
	"github.com/slotline-io/slotline/pkg/utils/logging"
	"github.com/slotline-io/slotline/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var orgCfg config.Org
	var firestoreProjectID string
	var firestoreDatabaseID string
	var checkStart string
	var checkEnd string

	var flags []cli.Flag
	flags = append(flags, orgCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (if specified, a store consistency check is performed)",
			Sources:     cli.EnvVars("SLOTLINE_FIRESTORE_PROJECT_ID"),
			Destination: &firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("SLOTLINE_FIRESTORE_DATABASE_ID"),
			Destination: &firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "check-start",
			Usage:       "Start date of the consistency check window (YYYY-MM-DD, default: 90 days ago)",
			Destination: &checkStart,
		},
		&cli.StringFlag{
			Name:        "check-end",
			Usage:       "End date of the consistency check window (YYYY-MM-DD, default: 90 days ahead)",
			Destination: &checkEnd,
		},
	)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration files and optionally check store consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			org, err := orgCfg.Configure()
			if err != nil {
				color.Red("✗ Configuration validation failed")
				return goerr.Wrap(err, "configuration validation failed")
			}
			color.Green("✓ Configuration validation passed")
			logger.Info("Configuration validated",
				"teams", len(org.Teams),
				"employees", len(org.Employees),
				"absence_types", len(org.AbsenceTypes),
			)

			if firestoreProjectID == "" {
				logger.Info("No Firestore project ID specified, skipping store consistency check")
				return nil
			}

			start, end, err := checkWindow(checkStart, checkEnd)
			if err != nil {
				return err
			}

			repo, err := firestore.New(ctx, firestoreProjectID, firestoreDatabaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Firestore repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithOrgConfig(org.ToDomainOrgConfig()))
			result, err := uc.ValidateStore(ctx, start, end)
			if err != nil {
				return goerr.Wrap(err, "store consistency check failed")
			}

			if result.HasIssues() {
				for _, issue := range result.Issues {
					color.Red("✗ %s %s %s: %s", issue.EmployeeID, issue.Date, issue.Slot, issue.Message)
					logger.Warn("Store consistency issue found",
						"employee_id", issue.EmployeeID,
						"date", issue.Date,
						"slot", issue.Slot,
						"message", issue.Message,
					)
				}
				return fmt.Errorf("store consistency check found %d issue(s)", len(result.Issues))
			}

			color.Green("✓ Store consistency check passed (%s to %s)", start, end)
			return nil
		},
	}
}

func checkWindow(startArg, endArg string) (types.Date, types.Date, error) {
	now := time.Now()
	start := types.DateOf(now.AddDate(0, 0, -90))
	end := types.DateOf(now.AddDate(0, 0, 90))

	if startArg != "" {
		d, err := types.ParseDate(startArg)
		if err != nil {
			return "", "", goerr.Wrap(err, "invalid check-start")
		}
		start = d
	}
	if endArg != "" {
		d, err := types.ParseDate(endArg)
		if err != nil {
			return "", "", goerr.Wrap(err, "invalid check-end")
		}
		end = d
	}
	if end < start {
		return "", "", goerr.New("check window end precedes start", goerr.V("start", start), goerr.V("end", end))
	}
	return start, end, nil
}
