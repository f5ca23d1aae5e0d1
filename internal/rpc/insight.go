// Package rpc wires InsightService onto the Connect protocol with JSON bodies.
package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// InsightServiceName is the fully-qualified name of the service.
const InsightServiceName = "insight.v1.InsightService"

// Procedure paths, one per RPC.
const (
	InsightServiceAddTransactionsProcedure        = "/insight.v1.InsightService/AddTransactions"
	InsightServiceDetectAnomaliesProcedure        = "/insight.v1.InsightService/DetectAnomalies"
	InsightServiceListTransactionsProcedure       = "/insight.v1.InsightService/ListTransactions"
	InsightServiceDeleteTransactionProcedure      = "/insight.v1.InsightService/DeleteTransaction"
	InsightServiceListAlertsProcedure             = "/insight.v1.InsightService/ListAlerts"
	InsightServiceUpdateAlertProcedure            = "/insight.v1.InsightService/UpdateAlert"
	InsightServiceSimulateScenarioProcedure       = "/insight.v1.InsightService/SimulateScenario"
	InsightServiceListScenariosProcedure          = "/insight.v1.InsightService/ListScenarios"
	InsightServiceGetFinancialProfileProcedure    = "/insight.v1.InsightService/GetFinancialProfile"
	InsightServiceUpdateFinancialProfileProcedure = "/insight.v1.InsightService/UpdateFinancialProfile"
	InsightServiceChatProcedure                   = "/insight.v1.InsightService/Chat"
)

// InsightServiceHandler is implemented by the server side of the service.
type InsightServiceHandler interface {
	AddTransactions(context.Context, *connect.Request[AddTransactionsRequest]) (*connect.Response[AddTransactionsResponse], error)
	DetectAnomalies(context.Context, *connect.Request[DetectAnomaliesRequest]) (*connect.Response[DetectAnomaliesResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
	ListAlerts(context.Context, *connect.Request[ListAlertsRequest]) (*connect.Response[ListAlertsResponse], error)
	UpdateAlert(context.Context, *connect.Request[UpdateAlertRequest]) (*connect.Response[UpdateAlertResponse], error)
	SimulateScenario(context.Context, *connect.Request[SimulateScenarioRequest]) (*connect.Response[SimulateScenarioResponse], error)
	ListScenarios(context.Context, *connect.Request[ListScenariosRequest]) (*connect.Response[ListScenariosResponse], error)
	GetFinancialProfile(context.Context, *connect.Request[GetFinancialProfileRequest]) (*connect.Response[GetFinancialProfileResponse], error)
	UpdateFinancialProfile(context.Context, *connect.Request[UpdateFinancialProfileRequest]) (*connect.Response[UpdateFinancialProfileResponse], error)
	Chat(context.Context, *connect.Request[ChatRequest]) (*connect.Response[ChatResponse], error)
}

// NewInsightServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewInsightServiceHandler(svc InsightServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	handlers := map[string]http.Handler{
		InsightServiceAddTransactionsProcedure:        connect.NewUnaryHandler(InsightServiceAddTransactionsProcedure, svc.AddTransactions, opts...),
		InsightServiceDetectAnomaliesProcedure:        connect.NewUnaryHandler(InsightServiceDetectAnomaliesProcedure, svc.DetectAnomalies, opts...),
		InsightServiceListTransactionsProcedure:       connect.NewUnaryHandler(InsightServiceListTransactionsProcedure, svc.ListTransactions, opts...),
		InsightServiceDeleteTransactionProcedure:      connect.NewUnaryHandler(InsightServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...),
		InsightServiceListAlertsProcedure:             connect.NewUnaryHandler(InsightServiceListAlertsProcedure, svc.ListAlerts, opts...),
		InsightServiceUpdateAlertProcedure:            connect.NewUnaryHandler(InsightServiceUpdateAlertProcedure, svc.UpdateAlert, opts...),
		InsightServiceSimulateScenarioProcedure:       connect.NewUnaryHandler(InsightServiceSimulateScenarioProcedure, svc.SimulateScenario, opts...),
		InsightServiceListScenariosProcedure:          connect.NewUnaryHandler(InsightServiceListScenariosProcedure, svc.ListScenarios, opts...),
		InsightServiceGetFinancialProfileProcedure:    connect.NewUnaryHandler(InsightServiceGetFinancialProfileProcedure, svc.GetFinancialProfile, opts...),
		InsightServiceUpdateFinancialProfileProcedure: connect.NewUnaryHandler(InsightServiceUpdateFinancialProfileProcedure, svc.UpdateFinancialProfile, opts...),
		InsightServiceChatProcedure:                   connect.NewUnaryHandler(InsightServiceChatProcedure, svc.Chat, opts...),
	}

	return "/" + InsightServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// InsightServiceClient is a client for the service.
type InsightServiceClient struct {
	addTransactions        *connect.Client[AddTransactionsRequest, AddTransactionsResponse]
	detectAnomalies        *connect.Client[DetectAnomaliesRequest, DetectAnomaliesResponse]
	listTransactions       *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	deleteTransaction      *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
	listAlerts             *connect.Client[ListAlertsRequest, ListAlertsResponse]
	updateAlert            *connect.Client[UpdateAlertRequest, UpdateAlertResponse]
	simulateScenario       *connect.Client[SimulateScenarioRequest, SimulateScenarioResponse]
	listScenarios          *connect.Client[ListScenariosRequest, ListScenariosResponse]
	getFinancialProfile    *connect.Client[GetFinancialProfileRequest, GetFinancialProfileResponse]
	updateFinancialProfile *connect.Client[UpdateFinancialProfileRequest, UpdateFinancialProfileResponse]
	chat                   *connect.Client[ChatRequest, ChatResponse]
}

// NewInsightServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8111).
func NewInsightServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *InsightServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &InsightServiceClient{
		addTransactions:        connect.NewClient[AddTransactionsRequest, AddTransactionsResponse](httpClient, baseURL+InsightServiceAddTransactionsProcedure, opts...),
		detectAnomalies:        connect.NewClient[DetectAnomaliesRequest, DetectAnomaliesResponse](httpClient, baseURL+InsightServiceDetectAnomaliesProcedure, opts...),
		listTransactions:       connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+InsightServiceListTransactionsProcedure, opts...),
		deleteTransaction:      connect.NewClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL+InsightServiceDeleteTransactionProcedure, opts...),
		listAlerts:             connect.NewClient[ListAlertsRequest, ListAlertsResponse](httpClient, baseURL+InsightServiceListAlertsProcedure, opts...),
		updateAlert:            connect.NewClient[UpdateAlertRequest, UpdateAlertResponse](httpClient, baseURL+InsightServiceUpdateAlertProcedure, opts...),
		simulateScenario:       connect.NewClient[SimulateScenarioRequest, SimulateScenarioResponse](httpClient, baseURL+InsightServiceSimulateScenarioProcedure, opts...),
		listScenarios:          connect.NewClient[ListScenariosRequest, ListScenariosResponse](httpClient, baseURL+InsightServiceListScenariosProcedure, opts...),
		getFinancialProfile:    connect.NewClient[GetFinancialProfileRequest, GetFinancialProfileResponse](httpClient, baseURL+InsightServiceGetFinancialProfileProcedure, opts...),
		updateFinancialProfile: connect.NewClient[UpdateFinancialProfileRequest, UpdateFinancialProfileResponse](httpClient, baseURL+InsightServiceUpdateFinancialProfileProcedure, opts...),
		chat:                   connect.NewClient[ChatRequest, ChatResponse](httpClient, baseURL+InsightServiceChatProcedure, opts...),
	}
}

func (c *InsightServiceClient) AddTransactions(ctx context.Context, req *connect.Request[AddTransactionsRequest]) (*connect.Response[AddTransactionsResponse], error) {
	return c.addTransactions.CallUnary(ctx, req)
}

func (c *InsightServiceClient) DetectAnomalies(ctx context.Context, req *connect.Request[DetectAnomaliesRequest]) (*connect.Response[DetectAnomaliesResponse], error) {
	return c.detectAnomalies.CallUnary(ctx, req)
}

func (c *InsightServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *InsightServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *InsightServiceClient) ListAlerts(ctx context.Context, req *connect.Request[ListAlertsRequest]) (*connect.Response[ListAlertsResponse], error) {
	return c.listAlerts.CallUnary(ctx, req)
}

func (c *InsightServiceClient) UpdateAlert(ctx context.Context, req *connect.Request[UpdateAlertRequest]) (*connect.Response[UpdateAlertResponse], error) {
	return c.updateAlert.CallUnary(ctx, req)
}

func (c *InsightServiceClient) SimulateScenario(ctx context.Context, req *connect.Request[SimulateScenarioRequest]) (*connect.Response[SimulateScenarioResponse], error) {
	return c.simulateScenario.CallUnary(ctx, req)
}

func (c *InsightServiceClient) ListScenarios(ctx context.Context, req *connect.Request[ListScenariosRequest]) (*connect.Response[ListScenariosResponse], error) {
	return c.listScenarios.CallUnary(ctx, req)
}

func (c *InsightServiceClient) GetFinancialProfile(ctx context.Context, req *connect.Request[GetFinancialProfileRequest]) (*connect.Response[GetFinancialProfileResponse], error) {
	return c.getFinancialProfile.CallUnary(ctx, req)
}

func (c *InsightServiceClient) UpdateFinancialProfile(ctx context.Context, req *connect.Request[UpdateFinancialProfileRequest]) (*connect.Response[UpdateFinancialProfileResponse], error) {
	return c.updateFinancialProfile.CallUnary(ctx, req)
}

func (c *InsightServiceClient) Chat(ctx context.Context, req *connect.Request[ChatRequest]) (*connect.Response[ChatResponse], error) {
	return c.chat.CallUnary(ctx, req)
}
