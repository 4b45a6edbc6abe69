package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/scribehub/go-scribe/articles"
)

var listOpts articles.ListOptions

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Listings, search and single-article lookups",
}

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loginFromEnv(cmd.Context()); err != nil {
			return err
		}
		result, err := sdk.Articles.List(cmd.Context(), listOpts)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var articlesSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search articles by relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loginFromEnv(cmd.Context()); err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		result, err := sdk.Articles.Search(cmd.Context(), articles.SearchOptions{
			Query: strings.Join(args, " "),
			Page:  page,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var articlesGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Fetch one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loginFromEnv(cmd.Context()); err != nil {
			return err
		}
		article, err := sdk.Articles.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(article)
	},
}

func init() {
	articlesListCmd.Flags().StringVar(&listOpts.AuthorID, "author", "", "filter by author id")
	articlesListCmd.Flags().StringVar(&listOpts.Category, "category", "", "filter by category id")
	articlesListCmd.Flags().StringVar(&listOpts.Status, "status", "", "filter by status")
	articlesListCmd.Flags().StringVar(&listOpts.Sort, "sort", "", "sort field")
	articlesListCmd.Flags().IntVar(&listOpts.Page, "page", 1, "page number")
	articlesListCmd.Flags().IntVar(&listOpts.PageSize, "page-size", 0, "page size (default from config)")

	articlesSearchCmd.Flags().Int("page", 1, "page number")

	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesSearchCmd)
	articlesCmd.AddCommand(articlesGetCmd)
}
