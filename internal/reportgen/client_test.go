package reportgen_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scolaris/school-management/internal/reportgen"
)

func TestReportGen(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ReportGen Suite")
}

var _ = Describe("Client", func() {
	var (
		logger *slog.Logger
		data   reportgen.StudentReportData
	)

	newClient := func(url, key string) *reportgen.Client {
		return reportgen.NewClient(reportgen.Config{
			APIURL:         url,
			APIKey:         key,
			Model:          "test-model",
			RequestTimeout: 2 * time.Second,
		}, logger)
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		data = reportgen.StudentReportData{
			FullName:  "Aya Koné",
			ClassName: "3ème B",
			Term:      "Trimestre 2",
			Grades:    map[string]float64{"Mathématiques": 14.5, "Français": 12},
		}
	})

	Describe("GenerateReport", func() {
		It("returns the remote text on success", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v1/generate"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))

				var payload map[string]interface{}
				Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())
				Expect(payload["model"]).To(Equal("test-model"))
				Expect(payload["prompt"]).To(ContainSubstring("Aya Koné"))

				json.NewEncoder(w).Encode(map[string]string{"text": "Un trimestre très solide."})
			}))
			defer server.Close()

			report := newClient(server.URL, "test-key").GenerateReport(context.Background(), data)
			Expect(report).To(Equal("Un trimestre très solide."))
		})

		It("falls back when no API key is configured", func() {
			report := newClient("http://unused.example", "").GenerateReport(context.Background(), data)
			Expect(report).To(Equal(reportgen.FallbackReport))
		})

		It("falls back on a non-200 response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			report := newClient(server.URL, "test-key").GenerateReport(context.Background(), data)
			Expect(report).To(Equal(reportgen.FallbackReport))
		})

		It("falls back on empty remote text", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"text": "   "})
			}))
			defer server.Close()

			report := newClient(server.URL, "test-key").GenerateReport(context.Background(), data)
			Expect(report).To(Equal(reportgen.FallbackReport))
		})

		It("falls back when the service never answers in time", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(5 * time.Second)
			}))
			defer server.Close()

			client := reportgen.NewClient(reportgen.Config{
				APIURL:         server.URL,
				APIKey:         "test-key",
				Model:          "test-model",
				RequestTimeout: 100 * time.Millisecond,
			}, logger)

			report := client.GenerateReport(context.Background(), data)
			Expect(report).To(Equal(reportgen.FallbackReport))
		})
	})

	Describe("AnalyzeCohort", func() {
		students := []reportgen.StudentSummary{
			{FullName: "Aya Koné", AverageGrade: 14.5},
			{FullName: "Moussa Diarra", AverageGrade: 9.8},
		}

		It("passes through an HTML list from the service", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"text": "<ul><li>Bonne dynamique générale.</li></ul>"})
			}))
			defer server.Close()

			analysis := newClient(server.URL, "test-key").AnalyzeCohort(context.Background(), students)
			Expect(analysis).To(Equal("<ul><li>Bonne dynamique générale.</li></ul>"))
		})

		It("wraps plain text into a list", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"text": "Bonne dynamique."})
			}))
			defer server.Close()

			analysis := newClient(server.URL, "test-key").AnalyzeCohort(context.Background(), students)
			Expect(analysis).To(Equal("<ul><li>Bonne dynamique.</li></ul>"))
		})

		It("falls back to the HTML fallback fragment on failure", func() {
			analysis := newClient("http://unused.example", "").AnalyzeCohort(context.Background(), students)
			Expect(analysis).To(Equal(reportgen.FallbackAnalysis))
		})
	})
})
