// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package sheets is an HTTP gateway that publishes a fixed range of a Google Sheets spreadsheet as JSON.

sheets-gateway is intended to be deployed as a small backend service behind a hosting platform proxy. It
reads the spreadsheet with a service account and supports the following commands:

  - serve, to run the HTTP gateway (the default when no command is given)
  - get, to download the spreadsheet range as a TSV, JSON or XLSX file
  - version, to display the current version

The gateway serves the following endpoints:

  - GET /, a fixed liveness message
  - GET /api/hello, a fixed JSON greeting
  - GET /api/sheet, the cell values of the configured range as {"data": [[...], ...]}
  - GET /health, a JSON health check
  - GET /metrics, Prometheus metrics
*/
package sheets
