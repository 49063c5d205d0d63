package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				owner_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN (
					'uploaded', 'analyzed', 'credentials_pending', 'ready_to_deploy', 'deployed', 'active', 'error'
				)),
				is_active BOOLEAN NOT NULL DEFAULT false,
				remote_workflow_id VARCHAR(255),
				raw_graph JSONB NOT NULL,
				credential_requirements JSONB NOT NULL DEFAULT '[]',
				triggers JSONB NOT NULL DEFAULT '[]',
				history JSONB NOT NULL DEFAULT '[]',
				summary JSONB,
				last_deployed_at TIMESTAMP WITH TIME ZONE,
				last_activated_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_owner_id ON workflows(owner_id);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
		`,
		2: `
			CREATE TABLE remote_accounts (
				owner_id VARCHAR(255) PRIMARY KEY,
				base_url TEXT NOT NULL,
				api_key TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
