package session_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/grouptheoryco/verbatim/pkg/session"
	"github.com/grouptheoryco/verbatim/pkg/turn"
)

func makeTurn(persona string, round int, confidence float64) *turn.Turn {
	t, err := turn.NewWithTimestamp(turn.Turn{
		StudyID:    "study_x",
		SessionID:  "session_a",
		PersonaID:  persona,
		RoundID:    round,
		Question:   "How was it?",
		Answer:     "Fine.",
		Confidence: confidence,
		Tags:       []string{"general"},
	})
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("Store", func() {
	var store *session.Store
	var base string

	BeforeEach(func() {
		base = GinkgoT().TempDir()
		store = session.NewStore(base)
	})

	Describe("Save", func() {
		It("writes log, table, and metadata into the session folder", func() {
			turns := []*turn.Turn{
				makeTurn("p1", 1, 0.9),
				makeTurn("p2", 1, 0.8),
				makeTurn("p1", 2, 0.7),
				makeTurn("p2", 2, 0.6),
			}

			result, err := store.Save(turns, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Folder).To(Equal(filepath.Join(base, "study_x", "session_a")))
			Expect(result.LogPath).To(HaveSuffix(".jsonl"))
			Expect(result.TablePath).To(HaveSuffix(".csv"))
			Expect(filepath.Base(result.MetadataPath)).To(Equal("session_a_metadata.json"))

			for _, path := range []string{result.LogPath, result.TablePath, result.MetadataPath} {
				Expect(path).To(BeARegularFile())
			}
		})

		It("refuses a batch with a broken round sequence and writes nothing", func() {
			turns := []*turn.Turn{
				makeTurn("p1", 1, 0.9),
				makeTurn("p1", 3, 0.9),
			}

			_, err := store.Save(turns, "study_x", "session_a")
			Expect(err).To(BeAssignableToTypeOf(session.ValidationError{}))
			Expect(err.Error()).To(ContainSubstring("round sequence invalid"))

			_, statErr := os.Stat(filepath.Join(base, "study_x"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("reports every problem in the batch, not just the first", func() {
			bad1 := makeTurn("p1", 1, 0.9)
			bad1.Confidence = 1.5
			bad2 := makeTurn("p1", 2, 0.9)
			bad2.PersonaID = ""

			_, err := store.Save([]*turn.Turn{bad1, bad2}, "study_x", "session_a")

			var vErr session.ValidationError
			Expect(err).To(BeAssignableToTypeOf(vErr))
			vErr = err.(session.ValidationError)
			Expect(len(vErr.Problems)).To(BeNumerically(">=", 2))
		})

		It("writes the CSV with the canonical header", func() {
			result, err := store.Save([]*turn.Turn{makeTurn("p1", 1, 0.9)}, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(result.TablePath)
			Expect(err).NotTo(HaveOccurred())

			header := strings.SplitN(string(data), "\n", 2)[0]
			Expect(header).To(Equal(strings.Join(turn.Fields, ",")))
		})

		It("records sorted personas and rounds in the metadata", func() {
			turns := []*turn.Turn{
				makeTurn("zeta", 1, 0.9),
				makeTurn("alpha", 1, 0.9),
				makeTurn("zeta", 2, 0.9),
				makeTurn("alpha", 2, 0.9),
			}

			result, err := store.Save(turns, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(result.MetadataPath)
			Expect(err).NotTo(HaveOccurred())

			var metadata session.Metadata
			Expect(json.Unmarshal(data, &metadata)).To(Succeed())
			Expect(metadata.StudyID).To(Equal("study_x"))
			Expect(metadata.SessionID).To(Equal("session_a"))
			Expect(metadata.TotalTurns).To(Equal(4))
			Expect(metadata.Personas).To(Equal([]string{"alpha", "zeta"}))
			Expect(metadata.Rounds).To(Equal([]int{1, 2}))
			Expect(metadata.Files.Log).To(HaveSuffix(".jsonl"))
			Expect(metadata.Validation.SchemaErrors).To(Equal(0))
		})

		It("keeps a stable metadata filename across repeated saves", func() {
			turns := []*turn.Turn{makeTurn("p1", 1, 0.9)}

			first, err := store.Save(turns, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())
			second, err := store.Save(turns, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			Expect(first.MetadataPath).To(Equal(second.MetadataPath))
		})
	})

	Describe("Load", func() {
		It("round-trips a saved batch exactly", func() {
			turns := []*turn.Turn{
				makeTurn("p1", 1, 0.9),
				makeTurn("p1", 2, 0.55),
			}
			turns[1].FollowUpQuestion = turn.StringPtr("Why?")
			turns[1].FollowUpAnswer = turn.StringPtr("Because.")

			result, err := store.Save(turns, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			loaded, err := store.Load(result.LogPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(turns))
		})

		It("aborts with the 1-based line number of the first bad record", func() {
			result, err := store.Save([]*turn.Turn{makeTurn("p1", 1, 0.9)}, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			f, err := os.OpenFile(result.LogPath, os.O_APPEND|os.O_WRONLY, 0o644)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.WriteString(`{"study_id":"study_x"}` + "\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())

			_, err = store.Load(result.LogPath)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("line 2"))
		})

		It("distinguishes a missing file from an invalid one", func() {
			_, err := store.Load(filepath.Join(base, "nope.jsonl"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("opening record log"))
		})
	})

	Describe("Artifacts", func() {
		It("groups stored files by kind", func() {
			_, err := store.Save([]*turn.Turn{makeTurn("p1", 1, 0.9)}, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			artifacts, err := store.Artifacts("study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(artifacts.Logs).To(HaveLen(1))
			Expect(artifacts.Tables).To(HaveLen(1))
			Expect(artifacts.Metadata).To(HaveLen(1))
		})

		It("returns empty lists for an unknown session", func() {
			artifacts, err := store.Artifacts("study_x", "never_saved")
			Expect(err).NotTo(HaveOccurred())
			Expect(artifacts.Logs).To(BeEmpty())
			Expect(artifacts.Tables).To(BeEmpty())
			Expect(artifacts.Metadata).To(BeEmpty())
		})
	})

	Describe("ValidateStored", func() {
		It("reports a clean save as valid and is idempotent", func() {
			turns, err := session.SampleTurns()
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Save(turns, session.SampleStudyID, session.SampleSessionID)
			Expect(err).NotTo(HaveOccurred())

			first, err := store.ValidateStored(session.SampleStudyID, session.SampleSessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Status).To(Equal(session.StatusValid))
			Expect(first.TotalErrors).To(BeZero())
			Expect(first.Results).To(HaveLen(1))
			Expect(first.Results[0].TurnsCount).To(Equal(len(turns)))

			second, err := store.ValidateStored(session.SampleStudyID, session.SampleSessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("flags a tampered record log as invalid", func() {
			result, err := store.Save([]*turn.Turn{makeTurn("p1", 1, 0.9)}, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			f, err := os.OpenFile(result.LogPath, os.O_APPEND|os.O_WRONLY, 0o644)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.WriteString("not json\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())

			report, err := store.ValidateStored("study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(session.StatusInvalid))
			Expect(report.TotalErrors).To(Equal(1))
			Expect(report.Results[0].Status).To(Equal(session.StatusInvalid))
		})

		It("flags a stored log whose rounds skip a value as invalid", func() {
			result, err := store.Save([]*turn.Turn{makeTurn("p1", 1, 0.9)}, "study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())

			line, err := json.Marshal(makeTurn("p1", 3, 0.9))
			Expect(err).NotTo(HaveOccurred())

			f, err := os.OpenFile(result.LogPath, os.O_APPEND|os.O_WRONLY, 0o644)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.Write(append(line, '\n'))
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())

			report, err := store.ValidateStored("study_x", "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(session.StatusInvalid))
			Expect(report.TotalErrors).To(Equal(1))
			Expect(report.Results[0].Status).To(Equal(session.StatusInvalid))
			Expect(report.Results[0].TurnsCount).To(Equal(2))
			Expect(report.Results[0].Errors[0]).To(ContainSubstring("round sequence invalid"))
			Expect(report.Results[0].Errors[0]).To(ContainSubstring("[1 2]"))
			Expect(report.Results[0].Errors[0]).To(ContainSubstring("[1 3]"))
		})

		It("produces an empty valid report when nothing was ever stored", func() {
			report, err := store.ValidateStored("study_x", "ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(session.StatusValid))
			Expect(report.Results).To(BeEmpty())
		})
	})
})
