// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// Package aws contains the AWS SDK v2 helpers used to fetch candidate pools
// stored in S3.
package aws
