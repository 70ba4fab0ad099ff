package loader_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/sim8086/loader"
)

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("device not ready")
}

var _ = Describe("Binary Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "binary-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		It("should load the file contents", func() {
			path := filepath.Join(tempDir, "listing_0037")
			Expect(os.WriteFile(path, []byte{0x89, 0xD9}, 0644)).To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Name).To(Equal("listing_0037"))
			Expect(prog.Data).To(Equal([]byte{0x89, 0xD9}))
		})

		It("should load an empty file", func() {
			path := filepath.Join(tempDir, "empty")
			Expect(os.WriteFile(path, nil, 0644)).To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Data).To(BeEmpty())
		})

		It("should return error for non-existent file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing"))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})
	})

	Describe("Read", func() {
		It("should accept an image of exactly the maximum size", func() {
			prog, err := loader.Read("max", bytes.NewReader(make([]byte, loader.MaxSize)))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Data).To(HaveLen(loader.MaxSize))
		})

		It("should reject an image over the maximum size", func() {
			_, err := loader.Read("big", bytes.NewReader(make([]byte, loader.MaxSize+1)))
			Expect(errors.Is(err, loader.ErrTooLarge)).To(BeTrue())
		})

		It("should wrap read failures", func() {
			_, err := loader.Read("broken", brokenReader{})
			Expect(err).To(MatchError(ContainSubstring("device not ready")))
		})
	})
})
