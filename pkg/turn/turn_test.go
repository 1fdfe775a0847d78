package turn_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/grouptheoryco/verbatim/pkg/turn"
)

// validFields returns a fully-populated turn that passes validation.
func validFields() turn.Turn {
	return turn.Turn{
		StudyID:    "study_001",
		SessionID:  "session_001",
		PersonaID:  "sarah_small_business",
		RoundID:    1,
		Question:   "What are your biggest challenges?",
		Answer:     "Too many disconnected tools.",
		Confidence: 0.85,
		Tags:       []string{"workflow_inefficiency", "tool_fragmentation"},
		Timestamp:  "2025-06-01T10:30:00Z",
	}
}

var _ = Describe("New", func() {
	It("accepts a fully valid record", func() {
		t, err := turn.New(validFields())
		Expect(err).NotTo(HaveOccurred())
		Expect(t.StudyID).To(Equal("study_001"))
	})

	It("accepts both confidence boundaries", func() {
		for _, c := range []float64{0.0, 1.0} {
			fields := validFields()
			fields.Confidence = c
			_, err := turn.New(fields)
			Expect(err).NotTo(HaveOccurred(), "confidence %v should be valid", c)
		}
	})

	It("rejects confidence just outside the closed interval", func() {
		for _, c := range []float64{-0.0001, 1.0001} {
			fields := validFields()
			fields.Confidence = c
			_, err := turn.New(fields)
			Expect(err).To(BeAssignableToTypeOf(turn.OutOfRangeError{}), "confidence %v should fail", c)
		}
	})

	It("rejects round_id below 1", func() {
		fields := validFields()
		fields.RoundID = 0
		_, err := turn.New(fields)

		var oor turn.OutOfRangeError
		Expect(err).To(BeAssignableToTypeOf(oor))
		Expect(err.Error()).To(ContainSubstring("round_id"))
	})

	It("rejects an unparseable timestamp", func() {
		fields := validFields()
		fields.Timestamp = "yesterday at noon"
		_, err := turn.New(fields)
		Expect(err).To(BeAssignableToTypeOf(turn.FormatError{}))
	})

	It("accepts naive ISO-8601 timestamps without a zone", func() {
		fields := validFields()
		fields.Timestamp = "2025-06-01T10:30:00.123456"
		_, err := turn.New(fields)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects empty identifier fields", func() {
		fields := validFields()
		fields.PersonaID = ""
		_, err := turn.New(fields)
		Expect(err).To(BeAssignableToTypeOf(turn.SchemaError{}))
	})

	It("normalizes nil tags to an empty slice", func() {
		fields := validFields()
		fields.Tags = nil
		t, err := turn.New(fields)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Tags).NotTo(BeNil())
		Expect(t.Tags).To(BeEmpty())
	})
})

var _ = Describe("NewWithTimestamp", func() {
	It("stamps a UTC timestamp with a trailing zone marker", func() {
		fields := validFields()
		fields.Timestamp = ""

		t, err := turn.NewWithTimestamp(fields)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.HasSuffix(t.Timestamp, "Z")).To(BeTrue())

		_, err = turn.ParseTimestamp(t.Timestamp)
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Wire format", func() {
	It("marshals fields in canonical order with null for absent follow-ups", func() {
		t, err := turn.New(validFields())
		Expect(err).NotTo(HaveOccurred())

		data, err := json.Marshal(t)
		Expect(err).NotTo(HaveOccurred())

		line := string(data)
		Expect(line).To(ContainSubstring(`"follow_up_question":null`))
		Expect(strings.Index(line, `"study_id"`)).To(BeNumerically("<", strings.Index(line, `"session_id"`)))
		Expect(strings.Index(line, `"tags"`)).To(BeNumerically("<", strings.Index(line, `"timestamp"`)))
	})

	It("round-trips through Decode", func() {
		fields := validFields()
		fields.FollowUpQuestion = turn.StringPtr("How much time does that cost you?")
		fields.FollowUpAnswer = turn.StringPtr("About 30 minutes a day.")

		orig, err := turn.New(fields)
		Expect(err).NotTo(HaveOccurred())

		data, err := json.Marshal(orig)
		Expect(err).NotTo(HaveOccurred())

		decoded, err := turn.Decode(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(orig))
	})
})

var _ = Describe("Decode", func() {
	It("rejects undeclared fields", func() {
		t, _ := turn.New(validFields())
		data, _ := json.Marshal(t)

		var m map[string]any
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		m["sentiment"] = 0.4
		extra, _ := json.Marshal(m)

		_, err := turn.Decode(extra)
		Expect(err).To(BeAssignableToTypeOf(turn.SchemaError{}))
		Expect(err.Error()).To(ContainSubstring("sentiment"))
	})

	It("rejects missing required fields", func() {
		t, _ := turn.New(validFields())
		data, _ := json.Marshal(t)

		var m map[string]any
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		delete(m, "confidence")
		short, _ := json.Marshal(m)

		_, err := turn.Decode(short)
		Expect(err).To(BeAssignableToTypeOf(turn.SchemaError{}))
		Expect(err.Error()).To(ContainSubstring("confidence"))
	})

	It("rejects wrong-typed values", func() {
		line := []byte(`{"study_id":"s","session_id":"s1","persona_id":"p","round_id":"first",` +
			`"question":"q","answer":"a","follow_up_question":null,"follow_up_answer":null,` +
			`"confidence":0.5,"tags":[],"timestamp":"2025-06-01T10:30:00Z"}`)

		_, err := turn.Decode(line)
		Expect(err).To(BeAssignableToTypeOf(turn.SchemaError{}))
		Expect(err.Error()).To(ContainSubstring("round_id"))
	})

	It("rejects non-object lines", func() {
		_, err := turn.Decode([]byte(`[1,2,3]`))
		Expect(err).To(BeAssignableToTypeOf(turn.SchemaError{}))
	})
})

var _ = Describe("ValidateSequence", func() {
	mkTurn := func(study, session string, round int) *turn.Turn {
		fields := validFields()
		fields.StudyID = study
		fields.SessionID = session
		fields.RoundID = round
		t, err := turn.New(fields)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	It("allows duplicate rounds across personas", func() {
		turns := []*turn.Turn{
			mkTurn("s", "a", 1),
			mkTurn("s", "a", 2),
			mkTurn("s", "a", 2),
			mkTurn("s", "a", 3),
		}
		Expect(turn.ValidateSequence(turns)).To(BeEmpty())
	})

	It("reports gaps with expected vs actual", func() {
		turns := []*turn.Turn{
			mkTurn("s", "a", 1),
			mkTurn("s", "a", 3),
		}

		errs := turn.ValidateSequence(turns)
		Expect(errs).To(HaveLen(1))

		seqErr, ok := errs[0].(turn.SequenceError)
		Expect(ok).To(BeTrue())
		Expect(seqErr.Expected).To(Equal([]int{1, 2}))
		Expect(seqErr.Actual).To(Equal([]int{1, 3}))
	})

	It("rejects sequences that do not start at 1", func() {
		turns := []*turn.Turn{
			mkTurn("s", "a", 2),
			mkTurn("s", "a", 3),
		}
		Expect(turn.ValidateSequence(turns)).To(HaveLen(1))
	})

	It("validates each session group independently", func() {
		turns := []*turn.Turn{
			mkTurn("s", "a", 1),
			mkTurn("s", "b", 1),
			mkTurn("s", "b", 3),
		}

		errs := turn.ValidateSequence(turns)
		Expect(errs).To(HaveLen(1))
		Expect(errs[0].Error()).To(ContainSubstring("session b"))
	})
})

var _ = Describe("ValidateBatch", func() {
	It("accumulates record and sequence errors together", func() {
		good := validFields()
		bad := validFields()
		bad.Confidence = 1.5
		bad.RoundID = 3

		goodTurn, err := turn.New(good)
		Expect(err).NotTo(HaveOccurred())

		badTurn := &turn.Turn{}
		*badTurn = bad

		errs := turn.ValidateBatch([]*turn.Turn{goodTurn, badTurn})
		Expect(len(errs)).To(Equal(2))
		Expect(errs[0].Error()).To(ContainSubstring("turn 1"))
	})
})

var _ = Describe("CSVRecord", func() {
	It("renders values in their natural textual form", func() {
		fields := validFields()
		fields.FollowUpQuestion = turn.StringPtr("why?")
		t, err := turn.New(fields)
		Expect(err).NotTo(HaveOccurred())

		record := t.CSVRecord()
		Expect(record).To(HaveLen(len(turn.Fields)))
		Expect(record[3]).To(Equal("1"))
		Expect(record[6]).To(Equal("why?"))
		Expect(record[7]).To(Equal(""))
		Expect(record[8]).To(Equal("0.85"))
		Expect(record[9]).To(Equal("workflow_inefficiency;tool_fragmentation"))
	})
})

var _ = Describe("Schema", func() {
	It("closes the schema against additional properties", func() {
		schema, err := turn.Schema()
		Expect(err).NotTo(HaveOccurred())
		Expect(schema["additionalProperties"]).To(Equal(false))

		required, ok := schema["required"].([]any)
		Expect(ok).To(BeTrue())
		Expect(required).To(ContainElement("confidence"))
		Expect(required).NotTo(ContainElement("follow_up_question"))
	})
})
