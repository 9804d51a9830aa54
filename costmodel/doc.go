// Package costmodel defines the protocol's transaction cost parameters.
//
// A cost model is an immutable set of named coefficients, learned by linear
// regression against VM micro-benchmarks, that price ledger operations in
// modelled time and storage churn. Models travel through the tagged binary
// codec under the "transaction-cost-model[v4]" tag and render to a canonical
// fixed-order string; two models are equal exactly when their canonical
// strings match.
package costmodel
