package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verso/pkg/storage"
	"github.com/papercomputeco/verso/pkg/storage/sqlite"
)

var _ = Describe("SQLiteDriver", func() {
	var (
		driver *sqlite.SQLiteDriver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewSQLiteDriver(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewSQLiteDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "nested", "verso.db")

			s, err := sqlite.NewSQLiteDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps values across reopen", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "verso.db")

			s, err := sqlite.NewSQLiteDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Set(ctx, "research_notebook", []byte(`[]`))).To(Succeed())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewSQLiteDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			value, err := s.Get(ctx, "research_notebook")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal(`[]`))
		})
	})

	Describe("Get", func() {
		It("returns NotFoundError for a key never written", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Set", func() {
		It("stores and retrieves a value", func() {
			Expect(driver.Set(ctx, "k", []byte(`{"a":1}`))).To(Succeed())

			value, err := driver.Get(ctx, "k")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal(`{"a":1}`))
		})

		It("overwrites the whole value", func() {
			Expect(driver.Set(ctx, "k", []byte(`["first","second"]`))).To(Succeed())
			Expect(driver.Set(ctx, "k", []byte(`["third"]`))).To(Succeed())

			value, err := driver.Get(ctx, "k")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal(`["third"]`))
		})

		It("keeps keys independent", func() {
			Expect(driver.Set(ctx, "a", []byte("1"))).To(Succeed())
			Expect(driver.Set(ctx, "b", []byte("2"))).To(Succeed())

			a, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(a)).To(Equal("1"))
		})
	})

	Describe("Delete", func() {
		It("clears a slot", func() {
			Expect(driver.Set(ctx, "k", []byte("v"))).To(Succeed())
			Expect(driver.Delete(ctx, "k")).To(Succeed())

			_, err := driver.Get(ctx, "k")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("is a no-op for an absent key", func() {
			Expect(driver.Delete(ctx, "never-written")).To(Succeed())
		})
	})
})
