// Package sqpmethod drives a Sequential Quadratic Programming iteration
// over a smooth, bound-and-generally-constrained nonlinear program: it
// evaluates the caller's oracles, assembles and solves a QP subproblem
// each step via the qp package, globalises the step with a non-monotone
// ℓ₁-merit Armijo line search from the linesearch package, and maintains
// a damped BFGS Hessian approximation (bfgs package) when no exact Hessian
// is supplied. An exact Hessian can optionally be shifted by a Gershgorin
// regularisation (regularize package).
package sqpmethod
