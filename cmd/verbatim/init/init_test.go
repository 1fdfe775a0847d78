package initcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/grouptheoryco/verbatim/cmd/verbatim/init"
)

var _ = Describe("init command", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir = GinkgoT().TempDir()

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates a local .verbatim directory", func() {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{})
		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())

		info, err := os.Stat(filepath.Join(tmpDir, ".verbatim"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("is a no-op when already initialized", func() {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())

		again := initcmder.NewInitCmd()
		again.SetArgs([]string{})
		Expect(again.Execute()).To(Succeed())
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{"extra"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})
})
