// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/application/usecase/reconciliation"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
	"github.com/sales-backoffice/backend/internal/integration/entrypoint/dto"
)

// ReconciliationController handles statement reconciliation endpoints.
type ReconciliationController struct {
	createBatchUseCase    *reconciliation.CreateBatchUseCase
	listBatchesUseCase    *reconciliation.ListBatchesUseCase
	getBatchUseCase       *reconciliation.GetBatchUseCase
	deleteBatchUseCase    *reconciliation.DeleteBatchUseCase
	findCandidatesUseCase *reconciliation.FindCandidatesUseCase
	linkLineUseCase       *reconciliation.LinkLineUseCase
	unlinkLineUseCase     *reconciliation.UnlinkLineUseCase
	overrideLineUseCase   *reconciliation.OverrideLineUseCase
	setStateUseCase       *reconciliation.SetBatchStateUseCase
}

// NewReconciliationController creates a new reconciliation controller instance.
func NewReconciliationController(
	createBatchUseCase *reconciliation.CreateBatchUseCase,
	listBatchesUseCase *reconciliation.ListBatchesUseCase,
	getBatchUseCase *reconciliation.GetBatchUseCase,
	deleteBatchUseCase *reconciliation.DeleteBatchUseCase,
	findCandidatesUseCase *reconciliation.FindCandidatesUseCase,
	linkLineUseCase *reconciliation.LinkLineUseCase,
	unlinkLineUseCase *reconciliation.UnlinkLineUseCase,
	overrideLineUseCase *reconciliation.OverrideLineUseCase,
	setStateUseCase *reconciliation.SetBatchStateUseCase,
) *ReconciliationController {
	return &ReconciliationController{
		createBatchUseCase:    createBatchUseCase,
		listBatchesUseCase:    listBatchesUseCase,
		getBatchUseCase:       getBatchUseCase,
		deleteBatchUseCase:    deleteBatchUseCase,
		findCandidatesUseCase: findCandidatesUseCase,
		linkLineUseCase:       linkLineUseCase,
		unlinkLineUseCase:     unlinkLineUseCase,
		overrideLineUseCase:   overrideLineUseCase,
		setStateUseCase:       setStateUseCase,
	}
}

// CreateBatch handles POST /reconciliation/batches requests.
func (c *ReconciliationController) CreateBatch(ctx *gin.Context) {
	var req dto.CreateBatchRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	totalNet, err := parseAmount(req.TotalDeclaredNet)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid total_declared_net: " + err.Error()})
		return
	}
	totalFee, err := parseOptionalAmountString(req.TotalDeclaredFee)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid total_declared_fee: " + err.Error()})
		return
	}

	input := reconciliation.CreateBatchInput{
		Month:            req.Month,
		Year:             req.Year,
		SourceFile:       req.SourceFile,
		TotalDeclaredNet: totalNet,
		TotalDeclaredFee: totalFee,
		Lines:            make([]reconciliation.CreateLineInput, 0, len(req.Lines)),
	}

	for i, row := range req.Lines {
		paymentDate, err := time.Parse("2006-01-02", row.PaymentDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid payment_date on line " + strconv.Itoa(i) + ": " + err.Error(),
			})
			return
		}
		net, err := parseAmount(row.DeclaredNet)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid declared_net on line " + strconv.Itoa(i) + ": " + err.Error(),
			})
			return
		}
		fee, err := parseOptionalAmountString(row.DeclaredFee)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid declared_fee on line " + strconv.Itoa(i) + ": " + err.Error(),
			})
			return
		}

		input.Lines = append(input.Lines, reconciliation.CreateLineInput{
			PaymentDate:        paymentDate.UTC(),
			ClientCode:         row.ClientCode,
			ClientNameDeclared: row.ClientNameDeclared,
			DocumentType:       row.DocumentType,
			Series:             row.Series,
			DocumentNumber:     row.DocumentNumber,
			InstallmentNumber:  row.InstallmentNumber,
			DeclaredNet:        net,
			DeclaredFee:        fee,
		})
	}

	output, err := c.createBatchUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToBatchAggregateDTO(output.Batch))
}

// ListBatches handles GET /reconciliation/batches requests.
func (c *ReconciliationController) ListBatches(ctx *gin.Context) {
	input := reconciliation.ListBatchesInput{}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			input.Limit = limit
		}
	}
	if offsetStr := ctx.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			input.Offset = offset
		}
	}

	output, err := c.listBatchesUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	resp := dto.ListBatchesResponseDTO{
		Batches: make([]dto.BatchAggregateDTO, len(output.Batches)),
		Total:   output.Total,
	}
	for i, batch := range output.Batches {
		resp.Batches[i] = dto.ToBatchAggregateDTO(batch)
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetBatch handles GET /reconciliation/batches/:id requests.
func (c *ReconciliationController) GetBatch(ctx *gin.Context) {
	batchID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.getBatchUseCase.Execute(ctx.Request.Context(), reconciliation.GetBatchInput{BatchID: batchID})
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	resp := dto.GetBatchResponseDTO{
		Batch: dto.ToBatchAggregateDTO(output.Batch),
		Lines: make([]dto.LineDTO, len(output.Lines)),
	}
	for i, line := range output.Lines {
		resp.Lines[i] = dto.ToLineDTO(line)
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteBatch handles DELETE /reconciliation/batches/:id requests.
func (c *ReconciliationController) DeleteBatch(ctx *gin.Context) {
	batchID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if _, err := c.deleteBatchUseCase.Execute(ctx.Request.Context(), reconciliation.DeleteBatchInput{BatchID: batchID}); err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// FindCandidates handles GET /reconciliation/lines/:id/candidates requests.
func (c *ReconciliationController) FindCandidates(ctx *gin.Context) {
	lineID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.findCandidatesUseCase.Execute(ctx.Request.Context(), reconciliation.FindCandidatesInput{LineID: lineID})
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	resp := dto.FindCandidatesResponseDTO{
		Candidates: make([]dto.CandidateDTO, len(output.Candidates)),
	}
	for i, candidate := range output.Candidates {
		resp.Candidates[i] = dto.ToCandidateDTO(candidate)
	}

	ctx.JSON(http.StatusOK, resp)
}

// LinkLine handles POST /reconciliation/lines/:id/link requests.
func (c *ReconciliationController) LinkLine(ctx *gin.Context) {
	lineID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.LinkLineRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	recordID, err := uuid.Parse(req.BillingRecordID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid billing_record_id"})
		return
	}

	input := reconciliation.LinkLineInput{
		LineID:          lineID,
		BillingRecordID: recordID,
	}
	if req.InstallmentID != nil {
		installmentID, err := uuid.Parse(*req.InstallmentID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid installment_id"})
			return
		}
		input.InstallmentID = &installmentID
	}

	output, err := c.linkLineUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBatchAggregateDTO(output.Batch))
}

// UnlinkLine handles POST /reconciliation/lines/:id/unlink requests.
func (c *ReconciliationController) UnlinkLine(ctx *gin.Context) {
	lineID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.unlinkLineUseCase.Execute(ctx.Request.Context(), reconciliation.UnlinkLineInput{LineID: lineID})
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBatchAggregateDTO(output.Batch))
}

// OverrideLine handles PATCH /reconciliation/lines/:id requests.
func (c *ReconciliationController) OverrideLine(ctx *gin.Context) {
	lineID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	// Overrides accept a closed field set; a typo in a field name must fail
	// loudly instead of silently dropping the correction.
	decoder := json.NewDecoder(ctx.Request.Body)
	decoder.DisallowUnknownFields()

	var req dto.OverrideLineRequestDTO
	if err := decoder.Decode(&req); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
				Error: "Field not allowed in override: " + err.Error(),
				Code:  string(domainerror.ErrCodeOverrideFieldNotAllowed),
			})
			return
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	input := reconciliation.OverrideLineInput{
		LineID:         lineID,
		Resolved:       req.Resolved,
		ResolutionNote: req.ResolutionNote,
	}

	var parseErr error
	if input.DeclaredNet, parseErr = parseOptionalAmount(req.DeclaredNet); parseErr != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid declared_net: " + parseErr.Error()})
		return
	}
	if input.DeclaredFee, parseErr = parseOptionalAmount(req.DeclaredFee); parseErr != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid declared_fee: " + parseErr.Error()})
		return
	}
	if input.SystemNet, parseErr = parseOptionalAmount(req.SystemNet); parseErr != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid system_net: " + parseErr.Error()})
		return
	}
	if input.SystemFee, parseErr = parseOptionalAmount(req.SystemFee); parseErr != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid system_fee: " + parseErr.Error()})
		return
	}

	output, err := c.overrideLineUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBatchAggregateDTO(output.Batch))
}

// SetBatchState handles POST /reconciliation/batches/:id/state requests.
func (c *ReconciliationController) SetBatchState(ctx *gin.Context) {
	batchID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SetBatchStateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	output, err := c.setStateUseCase.Execute(ctx.Request.Context(), reconciliation.SetBatchStateInput{
		BatchID: batchID,
		State:   entity.BatchState(req.State),
		Notes:   req.Notes,
	})
	if err != nil {
		handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBatchAggregateDTO(output.Batch))
}

// parseIDParam parses the named path parameter as a UUID, responding 400 itself
// when the value is malformed.
func parseIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + name + " parameter"})
		return uuid.Nil, false
	}
	return id, true
}

func parseAmount(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}

// parseOptionalAmountString treats an empty string as zero; statements often
// leave the fee column blank.
func parseOptionalAmountString(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	return parseAmount(value)
}

func parseOptionalAmount(value *string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	amount, err := parseAmount(*value)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

// handleReconciliationError maps domain errors to HTTP responses: not-found
// codes to 404, stale reads to 409 with the retryable flag, validation and
// invalid transitions to 422. Anything uncoded is a 500.
func handleReconciliationError(ctx *gin.Context, err error) {
	var recErr *domainerror.ReconciliationError
	if !errors.As(err, &recErr) {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusUnprocessableEntity
	code := string(recErr.Code)
	switch {
	case strings.HasPrefix(code, "REC-02"):
		status = http.StatusNotFound
	case strings.HasPrefix(code, "REC-03"):
		status = http.StatusConflict
	}

	ctx.JSON(status, dto.ErrorResponse{
		Error:     recErr.Message,
		Code:      code,
		Retryable: recErr.Retryable,
	})
}
