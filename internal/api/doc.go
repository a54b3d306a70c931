// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the SIA agent platform.
//
// Agent messages go to POST {base}/webhooks/{agentId}. With streaming
// enabled the response body is a Server-Sent Events stream which the
// caller feeds to the sse package; without it the platform acknowledges
// with a job id and delivers the reply out of band.
package api
