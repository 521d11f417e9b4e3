package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/registry"
	"mergington-activities/pkg/catalog"
)

const defaultPath = "configs/activities.json"

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Init command flags
	initPath := initCmd.String("path", defaultPath, "Path to catalog file")
	initVersion := initCmd.String("version", "1.0.0", "Catalog version")
	initForce := initCmd.Bool("force", false, "Overwrite an existing file")

	// Add command flags
	addPath := addCmd.String("path", defaultPath, "Path to catalog file")
	name := addCmd.String("name", "", "Activity name (e.g., Robotics Club)")
	description := addCmd.String("description", "", "Description")
	schedule := addCmd.String("schedule", "", "Schedule (e.g., Mondays, 3:30 PM - 5:00 PM)")
	maxParticipants := addCmd.Int("max", 0, "Maximum number of participants")

	// Update command flags
	updatePath := updateCmd.String("path", defaultPath, "Path to catalog file")
	updateName := updateCmd.String("name", "", "Activity name to update")
	field := updateCmd.String("field", "", "Field to update (description, schedule, max_participants)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	validatePath := validateCmd.String("path", defaultPath, "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err = initCatalog(*initPath, *initVersion, *initForce); err == nil {
			fmt.Printf("Wrote built-in activities to %s\n", *initPath)
		}

	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *description == "" || *schedule == "" || *maxParticipants <= 0 {
			fmt.Println("Error: name, description, schedule and a positive max are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		activity := catalog.Activity{
			Name:            *name,
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    []string{},
		}
		if err = addActivity(*addPath, activity); err == nil {
			fmt.Printf("Added activity: %s\n", *name)
		}

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *updateName == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err = updateActivity(*updatePath, *updateName, *field, *value); err == nil {
			fmt.Printf("Updated activity %s, field %s to %s\n", *updateName, *field, *value)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		var count int
		if count, err = validateCatalog(*validatePath); err == nil {
			fmt.Printf("Catalog validation passed. Found %d activities.\n", count)
		}

	case "help":
		help()
		return

	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %s\n", describe(err))
		os.Exit(1)
	}
}

func describe(err error) string {
	if stdErr, ok := apperrors.AsStandardError(err); ok && stdErr.Details != "" {
		return fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
	}
	return err.Error()
}

// initCatalog writes the built-in activities as a catalog file.
func initCatalog(path, version string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	return catalog.FromActivities(version, registry.SeedActivities()).Save(path)
}

func addActivity(path string, activity catalog.Activity) error {
	c, err := catalog.LoadCatalog(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		c = &catalog.Catalog{Version: "1.0.0", Activities: []catalog.Activity{}}
	}

	if c.Find(activity.Name) >= 0 {
		return fmt.Errorf("activity %q already exists", activity.Name)
	}

	c.Activities = append(c.Activities, activity)
	if err := checkRegistry(c); err != nil {
		return err
	}
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return c.Save(path)
}

func updateActivity(path, name, field, value string) error {
	c, err := catalog.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	i := c.Find(name)
	if i < 0 {
		return fmt.Errorf("activity %q not found", name)
	}

	switch field {
	case "description":
		c.Activities[i].Description = value
	case "schedule":
		c.Activities[i].Schedule = value
	case "max_participants":
		limit, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_participants value: %w", err)
		}
		c.Activities[i].MaxParticipants = limit
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := checkRegistry(c); err != nil {
		return err
	}
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return c.Save(path)
}

// validateCatalog applies the same checks the server applies at startup.
func validateCatalog(path string) (int, error) {
	c, err := catalog.LoadCatalog(path)
	if err != nil {
		return 0, err
	}
	if err := checkRegistry(c); err != nil {
		return 0, err
	}
	return len(c.Activities), nil
}

func checkRegistry(c *catalog.Catalog) error {
	_, err := registry.New(c.ToActivities())
	return err
}

func help() {
	fmt.Println(`
Usage: catalog-tool <command> [flags]

Commands:
  init      Write the built-in activities to a catalog file
  add       Add a new activity to the catalog
  update    Update an existing activity's field
  validate  Validate the catalog file
  help      Show this help message

Examples:
  catalog-tool init -path configs/activities.json
  catalog-tool add -name "Robotics Club" -description "Build and program robots" -schedule "Mondays, 3:30 PM - 5:00 PM" -max 12
  catalog-tool update -name "Robotics Club" -field max_participants -value 16
  catalog-tool validate -path configs/activities.json

Use 'catalog-tool <command> -h' for more information about a command.
Point registry.catalog_path (or REGISTRY_CATALOG_PATH) at the file to serve it.`)
}
