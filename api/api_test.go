package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/grouptheoryco/verbatim/pkg/aggregate"
	"github.com/grouptheoryco/verbatim/pkg/eventstream/nop"
	"github.com/grouptheoryco/verbatim/pkg/insights"
	"github.com/grouptheoryco/verbatim/pkg/logger"
	"github.com/grouptheoryco/verbatim/pkg/registry"
	"github.com/grouptheoryco/verbatim/pkg/session"
	testutils "github.com/grouptheoryco/verbatim/pkg/utils/test"
)

func turnRecord(study, sessionID, persona string, round int) map[string]any {
	return map[string]any{
		"study_id":           study,
		"session_id":         sessionID,
		"persona_id":         persona,
		"round_id":           round,
		"question":           fmt.Sprintf("Question for round %d?", round),
		"answer":             "It works well for my team.",
		"follow_up_question": nil,
		"follow_up_answer":   nil,
		"confidence":         0.9,
		"tags":               []string{"usability"},
		"timestamp":          "2026-08-25T10:00:00Z",
	}
}

var _ = Describe("API", func() {
	var (
		server  *Server
		basedir string
		catalog *registry.Registry
	)

	BeforeEach(func() {
		basedir = GinkgoT().TempDir()

		var err error
		catalog, err = registry.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(catalog.Close)

		server = NewServer(
			Config{ListenAddr: ":0"},
			session.NewStore(basedir),
			catalog,
			nop.NewPublisher(),
			nil,
			logger.Nop(),
		)
	})

	postJSON := func(path string, body any) (int, string) {
		encoded, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", path, bytes.NewReader(encoded))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(data)
	}

	getJSON := func(path string) (int, string) {
		req := httptest.NewRequest("GET", path, nil)

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(data)
	}

	Describe("healthz", func() {
		It("reports ok", func() {
			code, body := getJSON("/healthz")
			Expect(code).To(Equal(200))
			Expect(body).To(ContainSubstring(`"ok"`))
		})
	})

	Describe("schema", func() {
		It("returns a closed schema", func() {
			code, body := getJSON("/schema")
			Expect(code).To(Equal(200))
			Expect(body).To(ContainSubstring(`"additionalProperties":false`))
			Expect(body).To(ContainSubstring(`"round_id"`))
		})
	})

	Describe("saving a session", func() {
		It("writes artifacts and catalogs the save", func() {
			records := []map[string]any{
				turnRecord("pricing_study", "s01", "persona_a", 1),
				turnRecord("pricing_study", "s01", "persona_b", 1),
				turnRecord("pricing_study", "s01", "persona_a", 2),
				turnRecord("pricing_study", "s01", "persona_b", 2),
			}

			code, body := postJSON("/studies/pricing_study/sessions/s01", records)
			Expect(code).To(Equal(201))

			var saved SaveSessionResponse
			Expect(json.Unmarshal([]byte(body), &saved)).To(Succeed())
			Expect(saved.TurnCount).To(Equal(4))
			Expect(saved.LogFile).To(HaveSuffix(".jsonl"))
			Expect(saved.TableFile).To(HaveSuffix(".csv"))

			_, err := os.Stat(filepath.Join(basedir, "pricing_study", "s01", saved.LogFile))
			Expect(err).NotTo(HaveOccurred())

			entries, err := catalog.ListStudy(context.Background(), "pricing_study")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].TurnCount).To(Equal(4))
		})

		It("rejects a non-array body", func() {
			code, _ := postJSON("/studies/pricing_study/sessions/s01", map[string]any{"not": "an array"})
			Expect(code).To(Equal(400))
		})

		It("rejects records with unknown fields", func() {
			record := turnRecord("pricing_study", "s01", "persona_a", 1)
			record["extra_field"] = "surprise"

			code, body := postJSON("/studies/pricing_study/sessions/s01", []map[string]any{record})
			Expect(code).To(Equal(422))
			Expect(body).To(ContainSubstring("extra_field"))
		})

		It("rejects a batch with a broken round sequence", func() {
			records := []map[string]any{
				turnRecord("pricing_study", "s01", "persona_a", 1),
				turnRecord("pricing_study", "s01", "persona_a", 3),
			}

			code, _ := postJSON("/studies/pricing_study/sessions/s01", records)
			Expect(code).To(Equal(422))

			entries, err := os.ReadDir(basedir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("artifacts and validation", func() {
		BeforeEach(func() {
			records := []map[string]any{
				turnRecord("pricing_study", "s01", "persona_a", 1),
			}
			code, _ := postJSON("/studies/pricing_study/sessions/s01", records)
			Expect(code).To(Equal(201))
		})

		It("lists stored artifacts", func() {
			code, body := getJSON("/studies/pricing_study/sessions/s01/artifacts")
			Expect(code).To(Equal(200))
			Expect(body).To(ContainSubstring(".jsonl"))
			Expect(body).To(ContainSubstring(".csv"))
			Expect(body).To(ContainSubstring("metadata"))
		})

		It("validates stored logs", func() {
			code, body := getJSON("/studies/pricing_study/sessions/s01/validate")
			Expect(code).To(Equal(200))

			var report session.Report
			Expect(json.Unmarshal([]byte(body), &report)).To(Succeed())
			Expect(report.Status).To(Equal(session.StatusValid))
			Expect(report.TotalErrors).To(Equal(0))
		})

		It("lists cataloged saves for a study", func() {
			code, body := getJSON("/studies/pricing_study/saves")
			Expect(code).To(Equal(200))
			Expect(body).To(ContainSubstring(`"count":1`))
		})
	})

	Describe("aggregation", func() {
		It("computes weighted sentiment and ranked themes", func() {
			code, body := postJSON("/aggregate", AggregateRequest{
				Personas: []aggregate.Weight{
					{PersonaID: "persona_a", Weight: 2.4},
					{PersonaID: "persona_b", Weight: 1.6},
				},
				Responses: []aggregate.Response{
					{PersonaID: "persona_a", Sentiment: 0.5, Themes: []string{"pricing", "onboarding"}},
					{PersonaID: "persona_b", Sentiment: 0.0, Themes: []string{"pricing"}},
				},
			})
			Expect(code).To(Equal(200))

			var result AggregateResponse
			Expect(json.Unmarshal([]byte(body), &result)).To(Succeed())
			Expect(result.WeightedSentiment).To(BeNumerically("~", 0.3, 1e-9))
			Expect(result.Weights["persona_a"]).To(BeNumerically("~", 1.2, 1e-9))
			Expect(result.Themes[0].Theme).To(Equal("pricing"))
		})

		It("rejects an empty persona set", func() {
			code, _ := postJSON("/aggregate", AggregateRequest{})
			Expect(code).To(Equal(422))
		})
	})

	Describe("insights", func() {
		It("reports the store as unavailable when no driver is configured", func() {
			code, _ := postJSON("/insights/documents", AddInsightsRequest{})
			Expect(code).To(Equal(503))

			code, _ = postJSON("/insights/search", SearchInsightsRequest{Embedding: []float32{0.1}})
			Expect(code).To(Equal(503))
		})

		Context("with a driver configured", func() {
			var driver *testutils.MockInsightDriver

			BeforeEach(func() {
				driver = testutils.NewMockInsightDriver()
				server = NewServer(
					Config{ListenAddr: ":0"},
					session.NewStore(basedir),
					catalog,
					nop.NewPublisher(),
					driver,
					logger.Nop(),
				)
			})

			It("stores documents", func() {
				code, body := postJSON("/insights/documents", AddInsightsRequest{
					Documents: []insights.Document{
						{ID: "doc-1", StudyID: "pricing_study", SessionID: "s01", Summary: "pricing concerns dominate", Embedding: []float32{0.1, 0.2}},
					},
				})
				Expect(code).To(Equal(201))
				Expect(body).To(ContainSubstring(`"stored":1`))
				Expect(driver.Documents()).To(HaveLen(1))
			})

			It("rejects an empty document set", func() {
				code, _ := postJSON("/insights/documents", AddInsightsRequest{})
				Expect(code).To(Equal(400))
			})

			It("searches stored documents", func() {
				driver.SetResults([]insights.QueryResult{
					{Document: insights.Document{ID: "doc-1", Summary: "pricing concerns dominate"}, Score: 0.93},
				})

				code, body := postJSON("/insights/search", SearchInsightsRequest{Embedding: []float32{0.1, 0.2}, TopK: 5})
				Expect(code).To(Equal(200))
				Expect(body).To(ContainSubstring("pricing concerns dominate"))
			})

			It("requires an embedding", func() {
				code, _ := postJSON("/insights/search", SearchInsightsRequest{})
				Expect(code).To(Equal(400))
			})
		})
	})
})
