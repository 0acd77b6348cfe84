package local_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verso/pkg/host"
	"github.com/papercomputeco/verso/pkg/host/local"
)

var _ = Describe("Host", func() {
	var (
		ctx context.Context
		dir string
		h   *local.Host
	)

	write := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		dir = filepath.Join(GinkgoT().TempDir(), "page")

		var err error
		h, err = local.New(local.Config{Dir: dir})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a directory", func() {
		_, err := local.New(local.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("creates the page directory", func() {
		info, err := os.Stat(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
		Expect(h.Dir()).To(Equal(dir))
	})

	Describe("PageInfo", func() {
		It("reads page.json", func() {
			write(local.PageInfoFile, `{"url":"https://example.com","title":"Example","favIconUrl":"https://example.com/f.ico"}`)

			info, err := h.PageInfo(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(info).To(Equal(host.PageInfo{
				URL:        "https://example.com",
				Title:      "Example",
				FavIconURL: "https://example.com/f.ico",
			}))
		})

		It("errors when no page is open", func() {
			_, err := h.PageInfo(ctx)
			Expect(err).To(MatchError(os.ErrNotExist))
		})

		It("errors on malformed page info", func() {
			write(local.PageInfoFile, `{`)
			_, err := h.PageInfo(ctx)
			Expect(err).To(MatchError(ContainSubstring("parsing page info")))
		})
	})

	Describe("PageText and Selection", func() {
		It("returns empty values when files are absent", func() {
			text, err := h.PageText(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())

			sel, err := h.Selection(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel).To(BeEmpty())
		})

		It("trims the selection", func() {
			write(local.SelectionFile, "  a quote \n")
			sel, err := h.Selection(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel).To(Equal("a quote"))
		})
	})

	Describe("ExtractArticle", func() {
		It("prefers article.json", func() {
			write(local.ArticleFile, `{"title":"Reader","content":"<p>Body</p>"}`)
			article, err := h.ExtractArticle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(article.Title).To(Equal("Reader"))
			Expect(article.Content).To(Equal("<p>Body</p>"))
		})

		It("falls back to page text and title", func() {
			write(local.PageInfoFile, `{"url":"u","title":"Page Title"}`)
			write(local.PageTextFile, "Some article text")

			article, err := h.ExtractArticle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(article).To(Equal(host.Article{Title: "Page Title", Content: "Some article text"}))
		})

		It("reports ErrNoArticle for empty pages", func() {
			_, err := h.ExtractArticle(ctx)
			Expect(err).To(MatchError(host.ErrNoArticle))

			write(local.ArticleFile, `{"title":"t","content":"  "}`)
			_, err = h.ExtractArticle(ctx)
			Expect(err).To(MatchError(host.ErrNoArticle))
		})
	})

	Describe("DOM injection", func() {
		It("records and removes styles", func() {
			id, err := h.InjectCSS(ctx, "body{}")
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Styles()).To(HaveKeyWithValue(id, "body{}"))

			Expect(h.RemoveCSS(ctx, id)).To(Succeed())
			Expect(h.Styles()).To(BeEmpty())
			Expect(h.RemoveCSS(ctx, id)).NotTo(Succeed())
		})

		It("records widgets with distinct ids", func() {
			a, err := h.InsertWidget(ctx, host.Widget{HTML: "<div/>", Position: "center"})
			Expect(err).NotTo(HaveOccurred())
			b, err := h.InsertWidget(ctx, host.Widget{HTML: "<span/>", Position: "center"})
			Expect(err).NotTo(HaveOccurred())

			Expect(a).NotTo(Equal(b))
			Expect(h.Widgets()).To(HaveLen(2))
		})

		It("renders styles and widgets as a document", func() {
			styleID, err := h.InjectCSS(ctx, ".x{color:red}")
			Expect(err).NotTo(HaveOccurred())
			widgetID, err := h.InsertWidget(ctx, host.Widget{HTML: "<p>hi</p>", Position: "center"})
			Expect(err).NotTo(HaveOccurred())

			doc := h.Document("A & B")
			Expect(doc).To(HavePrefix("<!DOCTYPE html>"))
			Expect(doc).To(ContainSubstring("<title>A &amp; B</title>"))
			Expect(doc).To(ContainSubstring(`<style id="` + styleID + `">.x{color:red}</style>`))
			Expect(doc).To(ContainSubstring(`<div id="` + widgetID + `" data-position="center"><p>hi</p></div>`))
		})
	})

	Describe("Notify", func() {
		It("records notifications in order", func() {
			Expect(h.Notify(ctx, host.Notification{Title: "one"})).To(Succeed())
			Expect(h.Notify(ctx, host.Notification{Title: "two"})).To(Succeed())
			Expect(h.Notifications()).To(HaveLen(2))
			Expect(h.Notifications()[1].Title).To(Equal("two"))
		})
	})

	Describe("OnSelectionChange", func() {
		var (
			mu       sync.Mutex
			received []string
		)

		latest := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), received...)
		}

		BeforeEach(func() {
			mu.Lock()
			received = nil
			mu.Unlock()
		})

		handler := func(text string) {
			mu.Lock()
			received = append(received, text)
			mu.Unlock()
		}

		It("reports new selections until unsubscribed", func() {
			unsubscribe, err := h.OnSelectionChange(handler)
			Expect(err).NotTo(HaveOccurred())

			write(local.SelectionFile, "first selection")
			Eventually(latest, 2*time.Second).Should(ContainElement("first selection"))

			unsubscribe()
			count := len(latest())

			write(local.SelectionFile, "after unsubscribe")
			Consistently(func() int { return len(latest()) }, 300*time.Millisecond).Should(Equal(count))
		})

		It("ignores other files", func() {
			unsubscribe, err := h.OnSelectionChange(handler)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(unsubscribe)

			write(local.PageTextFile, "text")
			Consistently(latest, 300*time.Millisecond).Should(BeEmpty())
		})

		It("reports a cleared selection when the file is removed", func() {
			write(local.SelectionFile, "existing")

			unsubscribe, err := h.OnSelectionChange(handler)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(unsubscribe)

			Expect(os.Remove(filepath.Join(dir, local.SelectionFile))).To(Succeed())
			Eventually(latest, 2*time.Second).Should(ContainElement(""))
		})

		It("tolerates repeated unsubscribe calls", func() {
			unsubscribe, err := h.OnSelectionChange(handler)
			Expect(err).NotTo(HaveOccurred())
			unsubscribe()
			unsubscribe()
		})
	})
})
