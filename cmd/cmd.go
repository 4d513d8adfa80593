// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func employeeFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Full name"},
		&cli.StringFlag{Name: "role", Usage: "Job title"},
		&cli.StringFlag{Name: "department", Aliases: []string{"d"}, Usage: "Department"},
		&cli.StringFlag{Name: "grade", Aliases: []string{"g"}, Usage: "Grade level name"},
		&cli.StringFlag{Name: "country", Usage: "Country"},
		&cli.StringFlag{Name: "state", Usage: "State or region"},
		&cli.StringFlag{Name: "address", Usage: "Street address"},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
	}
}

func gradeFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Grade level name (unique, case-insensitive)"},
		&cli.StringFlag{Name: "description", Usage: "Description"},
		&cli.StringFlag{Name: "item-code", Usage: "Item code"},
	}
}

// queryFlags are the filter and sort flags shared by listing and exporting commands.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Match name, role, department, email, country or state"},
		&cli.StringFlag{Name: "grade", Aliases: []string{"g"}, Usage: "Only this grade level", Value: "all"},
		&cli.StringFlag{Name: "department", Aliases: []string{"d"}, Usage: "Only this department", Value: "all"},
		&cli.StringFlag{Name: "country", Usage: "Only this country", Value: "all"},
		&cli.StringFlag{Name: "sort", Usage: "Sort by name, role, department, country or grade"},
		&cli.StringFlag{Name: "order", Usage: "Sort order: asc or desc"},
	}
}

// setupCommand writes the config file and prepares the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file, initialize the database and run migrations",
		Action: r.Setup,
	}
}

// employeeCommand handles employee records
func employeeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "employee",
		Aliases: []string{"emp", "e"},
		Usage:   "Manage employee records",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Create an employee",
				Flags:  employeeFieldFlags(),
				Action: r.EmployeeAdd,
			},
			{
				Name:      "edit",
				Usage:     "Update the fields given as flags",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     employeeFieldFlags(),
				Action:    r.EmployeeEdit,
			},
			{
				Name:      "show",
				Usage:     "Show an employee profile",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.EmployeeShow,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an employee",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.EmployeeDelete,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the filtered, sorted directory",
				Flags: append(queryFlags(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "table, csv, markdown or txt", Value: "table"},
				),
				Action: r.EmployeeList,
			},
		},
	}
}

// gradeCommand handles grade levels
func gradeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "grade",
		Aliases: []string{"grades"},
		Usage:   "Manage grade levels",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Create a grade level",
				Flags:  gradeFieldFlags(),
				Action: r.GradeAdd,
			},
			{
				Name:      "edit",
				Usage:     "Update a grade level; renaming moves its employees to the new name",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     gradeFieldFlags(),
				Action:    r.GradeEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a grade level and unassign its employees",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.GradeDelete,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List grade levels with assigned employee counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.GradeList,
			},
		},
	}
}

// dataCommand handles backups, bulk transfer and storage
func dataCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "data",
		Usage: "Backups, bulk import/export and storage usage",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Write a JSON backup of every record",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: staff-directory-backup-YYYY-MM-DD.json, - for stdout)"},
				},
				Action: r.DataExport,
			},
			{
				Name:      "import",
				Usage:     "Replace every record with a JSON backup (- reads stdin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Action:    r.DataImport,
			},
			{
				Name:  "clear",
				Usage: "Remove every record and the automatic backup",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.DataClear,
			},
			{
				Name:  "info",
				Usage: "Show storage usage and a data summary",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.DataInfo,
			},
			{
				Name:   "restore",
				Usage:  "Replace every record with the automatic backup",
				Action: r.DataRestore,
			},
			{
				Name:      "spreadsheet",
				Aliases:   []string{"xlsx"},
				Usage:     "Export the filtered directory and grade levels to an XLSX workbook",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags:     queryFlags(),
				Action:    r.DataSpreadsheet,
			},
			{
				Name:      "load-sheet",
				Usage:     "Bulk import employees from an XLSX, XLS or CSV sheet",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "Concurrent row validators (max 10)", Value: 4},
					&cli.BoolFlag{Name: "skip-invalid", Usage: "Import the valid rows even when some fail"},
				},
				Action: r.DataLoadSheet,
			},
			{
				Name:  "export-all",
				Usage: "Export every record in several formats with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Output directory (default: staff_directory_export_{epoch})"},
					&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, csv, markdown, txt or xlsx (repeatable, default: all)"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers (max 10)", Value: 4},
				},
				Action: r.DataExportAll,
			},
		},
	}
}

// serveCommand runs the loopback JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the directory JSON API on a loopback address",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (loopback only)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive directory management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive staff directory",
		Flags:   queryFlags(),
		Action:  r.TUI,
	}
}
