// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slsqp

const (
	zero = 0.0
	one  = 1.0
	two  = 2.0
	four = 4.0
	ten  = 10.0
	hun  = 100.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

type sqpMode int

const (
	OK sqpMode = iota
	// HasSolution problem solved successfully.
	HasSolution
	// BadArgument evaluation panic or input dimension unacceptable.
	BadArgument
	// NNLSExceedMaxIter more than max iterations for solving NNLS
	NNLSExceedMaxIter
	// ConsIncompatible inequality constraints incompatible
	ConsIncompatible
	// LSISingularE matrix E is not of full rank in LSI
	LSISingularE
	// LSEISingularC matrix C is not of full rank in LSEI
	LSEISingularC
	// HFTIRankDefect rank-deficient equality constraint in HFTI
	HFTIRankDefect
	// SearchNotDescent positive directional derivative for line-search
	SearchNotDescent
	// SQPExceedMaxIter more than max iterations in SQP
	SQPExceedMaxIter
)

