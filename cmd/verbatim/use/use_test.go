package usecmder_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	verbatimcmder "github.com/grouptheoryco/verbatim/cmd/verbatim"
	"github.com/grouptheoryco/verbatim/pkg/dotdir"
)

var _ = Describe("use command", func() {
	var configDir string

	BeforeEach(func() {
		configDir = filepath.Join(GinkgoT().TempDir(), ".verbatim")
	})

	run := func(args ...string) error {
		cmd := verbatimcmder.NewVerbatimCmd()
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("saves the given study and session as the active context", func() {
		err := run("use", "--config-dir", configDir, "pricing_study", "s01")
		Expect(err).NotTo(HaveOccurred())

		state, err := dotdir.NewManager().LoadContextState(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).NotTo(BeNil())
		Expect(state.StudyID).To(Equal("pricing_study"))
		Expect(state.SessionID).To(Equal("s01"))
	})

	It("overwrites a previous context", func() {
		Expect(run("use", "--config-dir", configDir, "pricing_study", "s01")).To(Succeed())
		Expect(run("use", "--config-dir", configDir, "onboarding_study", "s02")).To(Succeed())

		state, err := dotdir.NewManager().LoadContextState(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.StudyID).To(Equal("onboarding_study"))
	})

	It("clears the context with --clear", func() {
		Expect(run("use", "--config-dir", configDir, "pricing_study", "s01")).To(Succeed())
		Expect(run("use", "--config-dir", configDir, "--clear")).To(Succeed())

		state, err := dotdir.NewManager().LoadContextState(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("rejects --clear combined with arguments", func() {
		err := run("use", "--config-dir", configDir, "--clear", "pricing_study")
		Expect(err).To(HaveOccurred())
	})

	It("requires both study and session", func() {
		err := run("use", "--config-dir", configDir, "pricing_study")
		Expect(err).To(HaveOccurred())
	})
})
