// Package reportgen calls the remote text-generation service that writes
// student report comments and class analyses. The client fails closed:
// whatever goes wrong, callers get readable fallback prose, never an error.
package reportgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// FallbackReport is returned whenever the remote service cannot
	// produce a comment; the form shows it as editable placeholder text.
	FallbackReport = "Appréciation indisponible pour le moment. Veuillez rédiger le commentaire manuellement."
	// FallbackAnalysis keeps the HTML-fragment convention of AnalyzeCohort.
	FallbackAnalysis = "<ul><li>Analyse indisponible pour le moment. Veuillez réessayer plus tard.</li></ul>"
)

// StudentReportData is the structured input for a report comment.
type StudentReportData struct {
	FullName     string             `json:"full_name"`
	ClassName    string             `json:"class_name"`
	AcademicYear string             `json:"academic_year"`
	Term         string             `json:"term"`
	Grades       map[string]float64 `json:"grades"`
	Absences     int                `json:"absences"`
}

// StudentSummary is one line of a cohort analysis request.
type StudentSummary struct {
	FullName     string  `json:"full_name"`
	AverageGrade float64 `json:"average_grade"`
}

type Config struct {
	APIURL         string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

type Client struct {
	apiURL     string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GenerateReport returns a prose comment for one student's term. Missing
// credentials or any remote failure yields FallbackReport.
func (c *Client) GenerateReport(ctx context.Context, data StudentReportData) string {
	prompt := buildReportPrompt(data)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("report generation failed, using fallback",
			"student", data.FullName, "error", err)
		return FallbackReport
	}
	return text
}

// AnalyzeCohort returns an HTML unordered list summarizing a class. Same
// fail-closed contract as GenerateReport.
func (c *Client) AnalyzeCohort(ctx context.Context, students []StudentSummary) string {
	prompt := buildAnalysisPrompt(students)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("cohort analysis failed, using fallback",
			"students", len(students), "error", err)
		return FallbackAnalysis
	}
	if !strings.Contains(text, "<ul>") {
		// Keep the fragment convention even when the model ignores it.
		text = "<ul><li>" + strings.ReplaceAll(strings.TrimSpace(text), "\n", "</li><li>") + "</li></ul>"
	}
	return text
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	payload := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote service returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if strings.TrimSpace(apiResponse.Text) == "" {
		return "", fmt.Errorf("remote service returned empty text")
	}

	return apiResponse.Text, nil
}

func buildReportPrompt(data StudentReportData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rédige une appréciation de bulletin scolaire en français pour l'élève %s", data.FullName)
	if data.ClassName != "" {
		fmt.Fprintf(&b, " (classe %s", data.ClassName)
		if data.Term != "" {
			fmt.Fprintf(&b, ", %s", data.Term)
		}
		b.WriteString(")")
	}
	b.WriteString(".\nNotes par matière:\n")
	for subject, grade := range data.Grades {
		fmt.Fprintf(&b, "- %s: %.1f/20\n", subject, grade)
	}
	if data.Absences > 0 {
		fmt.Fprintf(&b, "Absences: %d\n", data.Absences)
	}
	b.WriteString("Deux ou trois phrases, ton bienveillant et constructif.")
	return b.String()
}

func buildAnalysisPrompt(students []StudentSummary) string {
	var b strings.Builder
	b.WriteString("Analyse les résultats de cette classe et réponds uniquement par une liste HTML <ul> de constats et recommandations.\n")
	for _, s := range students {
		fmt.Fprintf(&b, "- %s: moyenne %.1f/20\n", s.FullName, s.AverageGrade)
	}
	return b.String()
}
