package notebook_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verso/pkg/notebook"
	testutils "github.com/papercomputeco/verso/pkg/utils/test"
)

func contents(items []notebook.EvidenceItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Content)
	}
	return out
}

func persisted(ctx context.Context, driver *testutils.MockDriver) []notebook.EvidenceItem {
	raw, err := driver.Driver.Get(ctx, notebook.Key)
	Expect(err).NotTo(HaveOccurred())

	var items []notebook.EvidenceItem
	Expect(json.Unmarshal(raw, &items)).To(Succeed())
	return items
}

var _ = Describe("Store", func() {
	var (
		ctx    context.Context
		driver *testutils.MockDriver
		store  *notebook.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockDriver()

		var err error
		store, err = notebook.NewStore(driver)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewStore", func() {
		It("requires a storage driver", func() {
			_, err := notebook.NewStore(nil)
			Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
		})
	})

	Describe("Load", func() {
		It("returns an empty notebook for a never-written slot", func() {
			items, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).NotTo(BeNil())
			Expect(items).To(BeEmpty())
		})

		It("returns what was persisted, element for element", func() {
			stored := []notebook.EvidenceItem{
				{ID: "b", Timestamp: 2, SourceURL: "https://x", SourceTitle: "X", Content: "Second", Type: notebook.TypeInsight},
				{ID: "a", Timestamp: 1, SourceURL: "https://x", SourceTitle: "X", Content: "First", Type: notebook.TypeQuote},
			}
			raw, err := json.Marshal(stored)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.Set(ctx, notebook.Key, raw)).To(Succeed())

			items, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(Equal(stored))
			Expect(store.Items()).To(Equal(stored))
		})

		It("reads the browser panel's field names", func() {
			raw := `[{"id":"k3j9x0a1b","timestamp":1735689600000,"sourceUrl":"https://example.com","sourceTitle":"Example","content":"Quote A","type":"quote"}]`
			Expect(driver.Set(ctx, notebook.Key, []byte(raw))).To(Succeed())

			items, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ID).To(Equal("k3j9x0a1b"))
			Expect(items[0].SourceURL).To(Equal("https://example.com"))
			Expect(items[0].CreatedAt()).To(Equal(time.UnixMilli(1735689600000)))
		})

		It("treats a JSON null as an empty notebook", func() {
			Expect(driver.Set(ctx, notebook.Key, []byte("null"))).To(Succeed())

			items, err := store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("keeps prior memory when the read fails", func() {
			_, err := store.Append(ctx, "kept", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			driver.SetFailures(true, false)
			_, err = store.Load(ctx)
			Expect(err).To(MatchError(testutils.ErrInjected))
			Expect(contents(store.Items())).To(Equal([]string{"kept"}))
		})

		DescribeTable("rejects malformed values and keeps prior memory",
			func(raw string) {
				_, err := store.Append(ctx, "kept", notebook.TypeQuote, "u", "t")
				Expect(err).NotTo(HaveOccurred())
				Expect(driver.Set(ctx, notebook.Key, []byte(raw))).To(Succeed())

				_, err = store.Load(ctx)
				Expect(err).To(MatchError(notebook.ErrMalformedNotebook))
				Expect(contents(store.Items())).To(Equal([]string{"kept"}))
			},
			Entry("not JSON", `{{{`),
			Entry("wrong shape", `{"items":[]}`),
			Entry("missing id", `[{"content":"x","type":"quote"}]`),
			Entry("duplicate ids", `[{"id":"a","type":"quote"},{"id":"a","type":"insight"}]`),
			Entry("unknown type", `[{"id":"a","type":"note"}]`),
		)

		It("clears the dirty flag", func() {
			driver.SetFailures(false, true)
			_, err := store.Append(ctx, "x", notebook.TypeQuote, "u", "t")
			Expect(err).To(HaveOccurred())
			Expect(store.Dirty()).To(BeTrue())

			driver.SetFailures(false, false)
			_, err = store.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Dirty()).To(BeFalse())
		})
	})

	Describe("Append", func() {
		It("returns the created item and grows the notebook", func() {
			item, err := store.Append(ctx, "Quote A", notebook.TypeQuote, "https://x", "X")
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Type).To(Equal(notebook.TypeQuote))
			Expect(item.Content).To(Equal("Quote A"))
			Expect(item.SourceURL).To(Equal("https://x"))
			Expect(item.SourceTitle).To(Equal("X"))
			Expect(item.ID).NotTo(BeEmpty())
			Expect(store.Len()).To(Equal(1))
		})

		It("orders items newest first", func() {
			_, err := store.Append(ctx, "First", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, "Second", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			Expect(contents(store.Items())).To(Equal([]string{"Second", "First"}))
			Expect(contents(persisted(ctx, driver))).To(Equal([]string{"Second", "First"}))
		})

		It("generates pairwise distinct ids", func() {
			seen := map[string]bool{}
			for i := range 200 {
				item, err := store.Append(ctx, fmt.Sprintf("item %d", i), notebook.TypeQuote, "u", "t")
				Expect(err).NotTo(HaveOccurred())
				Expect(seen).NotTo(HaveKey(item.ID))
				seen[item.ID] = true
			}
		})

		It("stamps items with the store clock", func() {
			fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			s, err := notebook.NewStore(driver, notebook.WithClock(func() time.Time { return fixed }))
			Expect(err).NotTo(HaveOccurred())

			item, err := s.Append(ctx, "x", notebook.TypeInsight, "u", "t")
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Timestamp).To(Equal(fixed.UnixMilli()))
		})

		It("regenerates an id that collides with an existing item", func() {
			ids := []string{"dup", "dup", "fresh"}
			next := 0
			s, err := notebook.NewStore(driver, notebook.WithIDGenerator(func() string {
				id := ids[next]
				next++
				return id
			}))
			Expect(err).NotTo(HaveOccurred())

			first, err := s.Append(ctx, "a", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())
			second, err := s.Append(ctx, "b", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			Expect(first.ID).To(Equal("dup"))
			Expect(second.ID).To(Equal("fresh"))
		})

		It("gives up when every generated id collides", func() {
			s, err := notebook.NewStore(driver, notebook.WithIDGenerator(func() string { return "same" }))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Append(ctx, "a", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Append(ctx, "b", notebook.TypeQuote, "u", "t")
			Expect(err).To(MatchError(notebook.ErrIDCollision))
			Expect(s.Len()).To(Equal(1))
		})

		It("rejects unknown types without mutating", func() {
			_, err := store.Append(ctx, "x", notebook.ItemType("note"), "u", "t")
			Expect(err).To(MatchError(notebook.ErrInvalidType))
			Expect(store.Len()).To(Equal(0))
			Expect(driver.Writes()).To(Equal(0))
		})

		It("does not enforce non-empty content", func() {
			item, err := store.Append(ctx, "", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Content).To(BeEmpty())
		})

		Context("when the durable write fails", func() {
			BeforeEach(func() {
				_, err := store.Append(ctx, "A", notebook.TypeQuote, "u", "t")
				Expect(err).NotTo(HaveOccurred())
				driver.SetFailures(false, true)
			})

			It("keeps the new item in memory and surfaces a PersistError", func() {
				item, err := store.Append(ctx, "C", notebook.TypeInsight, "u", "t")
				Expect(err).To(HaveOccurred())

				var perr *notebook.PersistError
				Expect(errors.As(err, &perr)).To(BeTrue())
				Expect(perr.Op).To(Equal("append"))
				Expect(err).To(MatchError(testutils.ErrInjected))

				Expect(item.Content).To(Equal("C"))
				Expect(contents(store.Items())).To(Equal([]string{"C", "A"}))
				Expect(store.Dirty()).To(BeTrue())
			})

			It("leaves the durable slot at the pre-append value until a retry succeeds", func() {
				_, err := store.Append(ctx, "C", notebook.TypeInsight, "u", "t")
				Expect(err).To(HaveOccurred())
				Expect(contents(persisted(ctx, driver))).To(Equal([]string{"A"}))

				driver.SetFailures(false, false)
				Expect(store.Sync(ctx)).To(Succeed())
				Expect(store.Dirty()).To(BeFalse())
				Expect(contents(persisted(ctx, driver))).To(Equal([]string{"C", "A"}))
			})
		})
	})

	Describe("Remove", func() {
		var first, second notebook.EvidenceItem

		BeforeEach(func() {
			var err error
			first, err = store.Append(ctx, "First", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())
			second, err = store.Append(ctx, "Second", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the matching item and persists", func() {
			Expect(store.Remove(ctx, second.ID)).To(Succeed())
			Expect(contents(store.Items())).To(Equal([]string{"First"}))
			Expect(contents(persisted(ctx, driver))).To(Equal([]string{"First"}))
		})

		It("is idempotent", func() {
			Expect(store.Remove(ctx, second.ID)).To(Succeed())
			writes := driver.Writes()

			Expect(store.Remove(ctx, second.ID)).To(Succeed())
			Expect(contents(store.Items())).To(Equal([]string{"First"}))
			Expect(driver.Writes()).To(Equal(writes))
		})

		It("is a no-op for an unknown id", func() {
			Expect(store.Remove(ctx, "nonexistent-id")).To(Succeed())
			Expect(store.Len()).To(Equal(2))
		})

		It("persists an empty list as []", func() {
			Expect(store.Remove(ctx, first.ID)).To(Succeed())
			Expect(store.Remove(ctx, second.ID)).To(Succeed())

			raw, err := driver.Driver.Get(ctx, notebook.Key)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal("[]"))
		})

		It("keeps the removal in memory when the write fails", func() {
			driver.SetFailures(false, true)

			err := store.Remove(ctx, first.ID)
			var perr *notebook.PersistError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Op).To(Equal("remove"))

			Expect(contents(store.Items())).To(Equal([]string{"Second"}))
			Expect(contents(persisted(ctx, driver))).To(Equal([]string{"Second", "First"}))
		})
	})

	Describe("concurrent mutations", func() {
		It("keeps every append when callers race", func() {
			const n = 32

			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := range n {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := store.Append(ctx, fmt.Sprintf("excerpt %d", i), notebook.TypeQuote, "https://x", "X")
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(store.Len()).To(Equal(n))

			ids := map[string]struct{}{}
			for _, item := range persisted(ctx, driver) {
				ids[item.ID] = struct{}{}
			}
			Expect(ids).To(HaveLen(n))
		})

		It("keeps the remaining items when appends race removals", func() {
			var seeded []string
			for i := range 8 {
				item, err := store.Append(ctx, fmt.Sprintf("seed %d", i), notebook.TypeQuote, "u", "t")
				Expect(err).NotTo(HaveOccurred())
				seeded = append(seeded, item.ID)
			}

			var wg sync.WaitGroup
			for i, id := range seeded {
				wg.Add(2)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(store.Remove(ctx, id)).To(Succeed())
				}()
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := store.Append(ctx, fmt.Sprintf("new %d", i), notebook.TypeInsight, "u", "t")
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			Expect(store.Len()).To(Equal(len(seeded)))
			Expect(persisted(ctx, driver)).To(HaveLen(len(seeded)))
			for _, item := range persisted(ctx, driver) {
				Expect(item.Type).To(Equal(notebook.TypeInsight))
			}
		})
	})

	Describe("Items", func() {
		It("returns a copy callers cannot use to mutate the notebook", func() {
			_, err := store.Append(ctx, "original", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			items := store.Items()
			items[0].Content = "tampered"

			Expect(contents(store.Items())).To(Equal([]string{"original"}))
		})
	})

	Describe("Get", func() {
		It("finds items by id", func() {
			item, err := store.Append(ctx, "x", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			got, ok := store.Get(item.ID)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(item))

			_, ok = store.Get("missing")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Sync", func() {
		It("does not write when nothing is pending", func() {
			Expect(store.Sync(ctx)).To(Succeed())
			Expect(driver.Writes()).To(Equal(0))
		})
	})

	Describe("WithKey", func() {
		It("stores under the configured slot", func() {
			s, err := notebook.NewStore(driver, notebook.WithKey("other_notebook"))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Append(ctx, "x", notebook.TypeQuote, "u", "t")
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Driver.Get(ctx, "other_notebook")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

var _ = Describe("ParseItemType", func() {
	It("accepts the defined types", func() {
		t, err := notebook.ParseItemType("insight")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(notebook.TypeInsight))
	})

	It("rejects anything else", func() {
		_, err := notebook.ParseItemType("Quote")
		Expect(err).To(MatchError(notebook.ErrInvalidType))
	})
})
