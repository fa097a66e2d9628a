// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInvocation,
//	    "operation failed on instance",
//	    cause,
//	    map[string]interface{}{
//	        "instance":  id,
//	        "operation": op,
//	    },
//	)
package errors
