package main

import (
	"errors"
	"fmt"

	"github.com/edi/backend/internal/application/order"
	domainprinting "github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/infrastructure/printing"
	"github.com/edi/backend/internal/infrastructure/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verifyAcceptanceCmd = &cobra.Command{
	Use:   "verify-acceptance ORDER_ID...",
	Short: "Check stored acceptance documents against their recorded hash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		store, err := storage.NewContentStore(ctx, e.cfg.Storage, e.log)
		if err != nil {
			return err
		}
		templates, err := printing.NewTemplateEngine()
		if err != nil {
			return err
		}
		renderer := printing.NewDocumentRenderer(templates, printing.NewHTMLEngine(), e.log)
		svc := order.NewService(e.scope, renderer, store, domainprinting.DefaultCompanyInfo())
		svc.SetLogger(e.log)

		var failed int
		for _, id := range args {
			doc, err := svc.AcceptanceDocument(ctx, id)
			switch {
			case errors.Is(err, domainprinting.ErrDigestMismatch):
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tMISMATCH\n", id)
			case err != nil:
				failed++
				e.log.Warn("Acceptance check failed", zap.String("order_id", id), zap.Error(err))
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tERROR\t%v\n", id, err)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tOK\t%s\n", id, doc.FileName)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d acceptance documents failed verification", failed, len(args))
		}
		return nil
	},
}
