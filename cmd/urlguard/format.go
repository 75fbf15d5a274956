package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"

	"github.com/mehrguard/url-security/internal/domain"
	"github.com/mehrguard/url-security/internal/domain/intel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printAssessment(a domain.RiskAssessment) {
	fmt.Printf("%s  [%s]  score=%d  confidence=%.2f\n",
		a.NormalizedURL, a.Verdict, a.Score, a.Confidence)

	if len(a.Hits) == 0 {
		fmt.Println("no signals triggered")
		fmt.Println()
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Signal", "Weight", "Evidence"})
	for _, hit := range a.Hits {
		table.Append([]string{string(hit.Signal), strconv.Itoa(hit.Weight), hit.Evidence})
	}
	table.Render()
	fmt.Println()
}

func printHistory(records []domain.ScanRecord) {
	if len(records) == 0 {
		fmt.Println("no scans recorded")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Scanned At", "URL", "Score", "Verdict", "Flags"})
	for _, rec := range records {
		table.Append([]string{
			rec.ScannedAt.Format("2006-01-02 15:04:05"),
			rec.URL,
			strconv.Itoa(rec.Assessment.Score),
			string(rec.Assessment.Verdict),
			strings.Join(rec.Assessment.Flags, ", "),
		})
	}
	table.Render()
}

func printIntelResults(bundle *intel.Bundle, domains []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Domain", "Status"})
	for _, d := range domains {
		res := bundle.Lookup(d)
		table.Append([]string{res.Domain, string(res.Status)})
	}
	table.Render()
	fmt.Printf("feed %s (%d entries, built %s)\n",
		bundle.Version, bundle.EntryCount, bundle.BuildTimestamp.Format("2006-01-02"))
}
