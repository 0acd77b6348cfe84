package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verso/pkg/storage"
	"github.com/papercomputeco/verso/pkg/storage/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
	})

	It("returns NotFoundError for an unwritten key", func() {
		_, err := driver.Get(ctx, "research_notebook")
		Expect(err).To(MatchError(storage.NotFoundError{Key: "research_notebook"}))
		Expect(storage.IsNotFound(err)).To(BeTrue())
	})

	It("stores and overwrites values", func() {
		Expect(driver.Set(ctx, "k", []byte("one"))).To(Succeed())
		Expect(driver.Set(ctx, "k", []byte("two"))).To(Succeed())

		value, err := driver.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(value)).To(Equal("two"))
		Expect(driver.Count()).To(Equal(1))
	})

	It("does not alias caller buffers", func() {
		buf := []byte("original")
		Expect(driver.Set(ctx, "k", buf)).To(Succeed())
		buf[0] = 'X'

		value, err := driver.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(value)).To(Equal("original"))

		value[0] = 'Y'
		again, _ := driver.Get(ctx, "k")
		Expect(string(again)).To(Equal("original"))
	})

	It("deletes slots", func() {
		Expect(driver.Set(ctx, "k", []byte("v"))).To(Succeed())
		Expect(driver.Delete(ctx, "k")).To(Succeed())
		Expect(driver.Count()).To(Equal(0))
		Expect(driver.Delete(ctx, "k")).To(Succeed())
	})
})
