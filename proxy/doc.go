// Package proxy turns raw api gateway lambda events into a canonical Request
// and routes that request through an ordered table of regex routes to a
// handler producing an events.APIGatewayProxyResponse.
//
// Both gateway payload shapes are accepted: the REST (v1) proxy shape and the
// HTTP (v2) shape. All knowledge of those shapes lives in NormalizeEvent so
// routes and handlers only ever see a Request.
//
// The router is designed to be as simplistic as possible and is not feature
// rich.
package proxy
