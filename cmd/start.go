/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/invoice-agent-be/handler"
	"github.com/tieubaoca/invoice-agent-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the invoice processing server",
	Long:  `Starts a server that processes invoice uploads and handles correction requests`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}

		wsService := service.NewWebSocketService()

		// Initialize handlers
		corsHandler := handler.NewCorsHandler(a.cfg.AllowedOrigins)
		invoiceHandler := handler.NewInvoiceHandler(a.agent, a.extractor, wsService, a.cfg.UploadDir, a.cfg.ExtractedTextDir, a.cfg.SampleFilePath)
		vendorHandler := handler.NewVendorHandler(a.vendors, a.search)
		documentHandler := handler.NewDocumentHandler(a.agent)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/process", invoiceHandler.ProcessInvoiceHandler)
			apiV1.POST("/process-sample", invoiceHandler.ProcessSampleHandler)
			apiV1.POST("/correct", invoiceHandler.CorrectionHandler)
			apiV1.POST("/extract", invoiceHandler.ExtractFieldHandler)
			apiV1.GET("/current", invoiceHandler.CurrentHandler)
			apiV1.GET("/download", invoiceHandler.DownloadHandler)
			apiV1.GET("/vendors", vendorHandler.ListVendorsHandler)
			apiV1.GET("/vendors/lookup", vendorHandler.LookupVendorHandler)
			apiV1.GET("/pdf", documentHandler.ServeDocumentHandler)
		}

		router.GET("/ws/status", func(c *gin.Context) {
			wsService.HandleStatus(c.Writer, c.Request)
		})
		router.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		log.Printf("Starting server on port %s...\n", a.cfg.Port)
		if err := router.Run(":" + a.cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
