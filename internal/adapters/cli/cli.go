package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"inventory-agent/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "overview", "ov", "o":
		result, err := svc.GetOverview(ctx)
		if err != nil {
			log.Fatalf("Failed to load overview: %v", err)
		}
		printOverview(result)

	case "sync", "s":
		var since *time.Time
		resource := ""
		for _, arg := range args[1:] {
			if value, ok := strings.CutPrefix(arg, "--since="); ok {
				parsed, err := time.Parse(time.RFC3339, value)
				if err != nil {
					log.Fatalf("Invalid --since (want RFC3339): %v", err)
				}
				since = &parsed
				continue
			}
			resource = arg
		}
		if resource != "" {
			result, err := svc.SyncResource(ctx, resource, since)
			if err != nil {
				log.Fatalf("Sync failed: %v", err)
			}
			fmt.Printf("Synced %s: %d records\n", result.Resource, result.Records)
			return
		}
		results, err := svc.SyncAll(ctx, since)
		for _, r := range results {
			fmt.Printf("Synced %s: %d records\n", r.Resource, r.Records)
		}
		if err != nil {
			log.Fatalf("Sync finished with failures: %v", err)
		}

	case "report", "rep", "r":
		report, err := svc.GetInventoryReport(ctx, app.ReportRequest{})
		if err != nil {
			log.Fatalf("Failed to generate report: %v", err)
		}
		printIndented(report)

	case "export", "x":
		path := "inventory-report.xlsx"
		if len(args) > 1 {
			path = args[1]
		}
		workbook, err := svc.ExportInventoryReportXLSX(ctx, app.ReportRequest{})
		if err != nil {
			log.Fatalf("Failed to export report: %v", err)
		}
		if err := os.WriteFile(path, workbook, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("Report written to %s\n", path)

	case "product", "prod", "p":
		if len(args) < 2 {
			log.Fatal("Usage: app product <code-or-id>")
		}
		report, err := svc.GetProductReport(ctx, args[1], app.ReportRequest{})
		if err != nil {
			log.Fatalf("Failed to generate product report: %v", err)
		}
		printIndented(report)

	case "ask", "a":
		if len(args) < 2 {
			log.Fatal("Usage: app ask \"<question>\"")
		}
		insight, err := svc.AskInventoryQuestion(ctx, args[1])
		if err != nil {
			log.Fatalf("Agent error: %v", err)
		}
		fmt.Println(insight.Answer)
		for _, highlight := range insight.Highlights {
			fmt.Println("  •", highlight)
		}
		if len(insight.SuggestedActions) > 0 {
			fmt.Println("Suggested actions:")
			for _, action := range insight.SuggestedActions {
				fmt.Println("  -", action)
			}
		}

	default:
		log.Fatalf("Unknown command: %s\nAvailable: overview, sync, report, export, product, ask", args[0])
	}
}

func printIndented(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printOverview(result *app.OverviewResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "SYNCED RESOURCES")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-24s %10s %22s\n", "RESOURCE", "RECORDS", "LAST SYNC")
	fmt.Println(strings.Repeat("-", 62))
	for _, r := range result.Resources {
		lastSync := "never"
		if r.LastSyncedAt != nil {
			lastSync = r.LastSyncedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %-24s %10d %22s\n", r.Resource, r.Records, lastSync)
	}
	fmt.Println(strings.Repeat("=", 62))
}
