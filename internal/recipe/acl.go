package recipe

import (
	"context"

	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
)

// applyACLs grants access on a freshly created asset. A template wins over an
// access group; with neither configured the catalog defaults already apply.
func (r *Recipe) applyACLs(ctx context.Context, settings iconik.StorageSettings, assetID string) bool {
	logger := logging.WithContext(ctx, r.logger)

	var (
		err    error
		source string
	)
	switch {
	case settings.ACLTemplateID != "":
		source = "template " + settings.ACLTemplateID
		err = r.catalog.ApplyACLTemplate(ctx, settings.ACLTemplateID, assetID)
	case settings.AccessGroupID != "":
		source = "group " + settings.AccessGroupID
		err = r.catalog.GrantGroupAccess(ctx, settings.AccessGroupID, assetID)
	default:
		return false
	}
	if err != nil {
		metrics.ObserveStepFailure(stepACL)
		logging.WarnWithContext(ctx, logger, "failed to apply acl", "acl_failed",
			logging.String("acl_source", source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the storage acl_template_id or access_group_id"),
			logging.String(logging.FieldImpact, "asset created without explicit acl"),
		)
		return false
	}
	logger.InfoContext(ctx, "applied acl", logging.String("acl_source", source))
	return true
}
