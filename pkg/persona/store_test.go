package persona_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/grouptheoryco/verbatim/pkg/persona"
)

var _ = Describe("FileStore", func() {
	var store *persona.FileStore

	BeforeEach(func() {
		store = persona.NewFileStore(GinkgoT().TempDir())
	})

	It("starts empty when no roster file exists", func() {
		personas, err := store.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(personas).To(BeEmpty())
	})

	It("round-trips a persona through Put and FindByID", func() {
		p := persona.New("Dana Reyes")
		p.Traits = []string{"pragmatic"}

		Expect(store.Put(p)).To(Succeed())

		found, ok, err := store.FindByID(p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(found.Name).To(Equal("Dana Reyes"))
		Expect(found.Traits).To(Equal([]string{"pragmatic"}))
		Expect(found.Active).To(BeTrue())
	})

	It("replaces an existing persona on Put with the same ID", func() {
		p := persona.New("Original")
		Expect(store.Put(p)).To(Succeed())

		p.Name = "Renamed"
		Expect(store.Put(p)).To(Succeed())

		personas, err := store.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(personas).To(HaveLen(1))
		Expect(personas[0].Name).To(Equal("Renamed"))
	})

	It("lists personas sorted by ID", func() {
		for _, p := range persona.Seed() {
			Expect(store.Put(p)).To(Succeed())
		}

		personas, err := store.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(personas).To(HaveLen(3))
		Expect(personas[0].ID < personas[1].ID).To(BeTrue())
		Expect(personas[1].ID < personas[2].ID).To(BeTrue())
	})

	It("deletes by ID and ignores unknown IDs", func() {
		p := persona.New("Short-lived")
		Expect(store.Put(p)).To(Succeed())
		Expect(store.Delete(p.ID)).To(Succeed())
		Expect(store.Delete("never-existed")).To(Succeed())

		personas, err := store.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(personas).To(BeEmpty())
	})

	It("misses cleanly on an unknown ID", func() {
		_, ok, err := store.FindByID("ghost")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Seed", func() {
	It("provides three active personas with distinct IDs", func() {
		seed := persona.Seed()
		Expect(seed).To(HaveLen(3))

		ids := map[string]bool{}
		for _, p := range seed {
			Expect(p.Active).To(BeTrue())
			Expect(p.ID).NotTo(BeEmpty())
			ids[p.ID] = true
		}
		Expect(ids).To(HaveLen(3))
	})
})
