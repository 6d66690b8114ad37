package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/spf13/cobra"

	"PBNPublisher/internal/app"
	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/usecase"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file|url>",
		Short: "Import articles from a .xlsx or .csv workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}

				var res usecase.IngestResult
				if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
					res, err = application.Ingestor.IngestURL(cmd.Context(), userID, source, "", 0)
				} else {
					var data []byte
					data, err = os.ReadFile(source)
					if err != nil {
						return fmt.Errorf("read workbook: %w", err)
					}
					res, err = application.Ingestor.Ingest(cmd.Context(), userID, usecase.Upload{
						FileName: filepath.Base(source),
						Size:     int64(len(data)),
						Data:     data,
					})
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Batch %d: %d articles (%d matched a website)\n",
					res.Batch.ID, res.Articles, res.Matched)
				return nil
			})
		},
	}
}

func newArticleCommand(ctx *commandContext) *cobra.Command {
	articleCmd := &cobra.Command{
		Use:   "article",
		Short: "Inspect imported articles",
	}
	articleCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}
				articles, err := application.Dashboard.Articles(cmd.Context(), userID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(articles))
				for _, a := range articles {
					rows = append(rows, articleRow(a))
				}
				writeListing(cmd.OutOrStdout(),
					[]string{"ID", "Title", "Status", "Website", "Attempts", "Link"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight})
				return nil
			})
		},
	})
	return articleCmd
}

func articleRow(a domain.Article) []string {
	website, link := "-", ""
	if a.WebsiteID != nil {
		website = strconv.FormatInt(*a.WebsiteID, 10)
	}
	if a.LiveLink != nil {
		link = *a.LiveLink
	}
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.OriginalTitle,
		string(a.Status),
		website,
		strconv.Itoa(a.PublishAttempts),
		link,
	}
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <article-id>",
		Short: "Spin an article and post it to its website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "article")
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}
				out := application.Publisher.Publish(cmd.Context(), userID, id)
				if err := out.Err(); err != nil {
					return fmt.Errorf("publish %d: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.Link)
				return nil
			})
		},
	}
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <article-id>",
		Short: "Show a sample spin as Markdown without publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "article")
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}
				post, err := application.Publisher.Preview(cmd.Context(), userID, id)
				if err != nil {
					return err
				}
				body, err := renderMarkdown(post)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), body)
				return nil
			})
		},
	}
}

func renderMarkdown(post domain.Post) (string, error) {
	converter := md.NewConverter("", true, nil)
	body, err := converter.ConvertString(post.Content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return "# " + post.Title + "\n\n" + strings.TrimSpace(body) + "\n", nil
}
